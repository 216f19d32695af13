package archive

import (
	"context"
	"log/slog"

	"github.com/ppiankov/curator/internal/model"
	"github.com/ppiankov/curator/internal/store"
	"github.com/ppiankov/curator/internal/util"
)

// ArticleArchiver writes analyzed articles, skipping URLs already stored
type ArticleArchiver struct {
	store  store.ArticleStore
	logger *slog.Logger
}

// NewArticleArchiver creates an ArticleArchiver
func NewArticleArchiver(s store.ArticleStore, logger *slog.Logger) *ArticleArchiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleArchiver{store: s, logger: logger.With("component", "archiver")}
}

// Archive makes one write attempt per article and tallies the outcome
func (a *ArticleArchiver) Archive(ctx context.Context, articles []model.Article) model.ArchiveResult {
	res := model.ArchiveResult{Errors: []model.ArchiveError{}}

	for _, art := range articles {
		if ctx.Err() != nil {
			res.Failed++
			res.Errors = append(res.Errors, model.ArchiveError{Title: art.Title, Error: ctx.Err().Error()})
			continue
		}

		exists, err := a.store.HasURL(ctx, art.URL)
		if err != nil {
			a.logger.Warn("duplicate check failed, treating as new", "url", art.URL, "error", err)
		}
		if exists {
			res.Skipped++
			a.logger.Debug("duplicate skipped", "url", art.URL)
			continue
		}

		ref, err := a.store.PutArticle(ctx, art)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, model.ArchiveError{Title: art.Title, Error: err.Error()})
			a.logger.Warn("article archive failed", "title", util.Truncate(art.Title, 50), "error", err)
			continue
		}

		res.Success++
		a.logger.Debug("article archived", "title", util.Truncate(art.Title, 50), "ref", ref)
	}

	a.logger.Info("articles archived", "success", res.Success, "skipped", res.Skipped, "failed", res.Failed)
	return res
}
