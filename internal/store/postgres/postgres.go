package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ppiankov/curator/internal/model"
)

// ArticleRow is one archived article
type ArticleRow struct {
	ID              string  `gorm:"primaryKey;size:32"`
	Title           string  `gorm:"size:512"`
	URL             string  `gorm:"size:1024;uniqueIndex"`
	Source          string  `gorm:"size:128;index"`
	Author          string  `gorm:"size:256"`
	Language        string  `gorm:"size:8"`
	Category        string  `gorm:"size:32;index"`
	Importance      string  `gorm:"size:16;index"`
	ImportanceScore float64 `gorm:"index"`
	Summary         string  `gorm:"type:text"`
	Tags            datatypes.JSONSlice[string]
	Status          string `gorm:"size:32"`
	PublishedAt     *time.Time
	CreatedAt       time.Time
}

func (ArticleRow) TableName() string { return "articles" }

// PostRow is one drafted post
type PostRow struct {
	ID             uint   `gorm:"primaryKey"`
	Title          string `gorm:"size:256"`
	Body           string `gorm:"type:text"`
	Hashtags       datatypes.JSONSlice[string]
	Category       string `gorm:"size:64"`
	SourceURL      string `gorm:"size:1024;index"`
	SourceTitle    string `gorm:"size:512"`
	RelevanceScore int
	Status         string `gorm:"size:32"`
	CreatedAt      time.Time
}

func (PostRow) TableName() string { return "posts" }

// Store keeps articles and posts in PostgreSQL
type Store struct {
	db *gorm.DB
}

// Open connects and migrates the schema
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&ArticleRow{}, &PostRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// HasURL reports whether an article row exists for url
func (s *Store) HasURL(ctx context.Context, url string) (bool, error) {
	var row ArticleRow
	err := s.db.WithContext(ctx).Select("id").Where("url = ?", url).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PutArticle inserts the article unless its URL is already stored
func (s *Store) PutArticle(ctx context.Context, a model.Article) (string, error) {
	row := articleRow(a)
	if err := s.db.WithContext(ctx).Where("url = ?", row.URL).FirstOrCreate(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

// PutPost inserts a draft post
func (s *Store) PutPost(ctx context.Context, p model.Post) (string, error) {
	row := postRow(p)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func articleRow(a model.Article) ArticleRow {
	id := a.ID
	if id == "" {
		id = model.ArticleID(a.URL)
	}
	return ArticleRow{
		ID:              id,
		Title:           a.Title,
		URL:             a.URL,
		Source:          a.Source,
		Author:          a.Author,
		Language:        a.Language,
		Category:        string(a.Category),
		Importance:      string(a.Importance),
		ImportanceScore: a.ImportanceScore,
		Summary:         a.Summary,
		Tags:            datatypes.JSONSlice[string](a.Tags),
		Status:          "inbox",
		PublishedAt:     a.PublishedAt,
	}
}

func postRow(p model.Post) PostRow {
	return PostRow{
		Title:          p.Title,
		Body:           p.Body,
		Hashtags:       datatypes.JSONSlice[string](p.Hashtags),
		Category:       p.Category,
		SourceURL:      p.SourceURL,
		SourceTitle:    p.SourceTitle,
		RelevanceScore: p.RelevanceScore,
		Status:         "draft",
	}
}
