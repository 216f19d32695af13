package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/curator/internal/model"
)

// credentialsFile is the layout of the optional credentials YAML
type credentialsFile struct {
	Notion struct {
		IntegrationToken   string `yaml:"integration_token"`
		DatabaseID         string `yaml:"database_id"`
		LinkedInDatabaseID string `yaml:"linkedin_database_id"`
	} `yaml:"notion"`
	Anthropic struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"anthropic"`
}

// applyCredentials fills secrets from the credentials file when it exists,
// otherwise from the environment, and fails when the article store cannot
// be reached with what was found.
func applyCredentials(cfg *model.Config) error {
	creds, err := readCredentials(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	notion := &cfg.Store.Notion
	if creds != nil {
		notion.Token = firstNonEmpty(creds.Notion.IntegrationToken, notion.Token)
		notion.DatabaseID = firstNonEmpty(creds.Notion.DatabaseID, notion.DatabaseID)
		notion.PostsDatabaseID = firstNonEmpty(creds.Notion.LinkedInDatabaseID, notion.PostsDatabaseID)
		if isAnthropic(cfg.LLM.Provider) {
			cfg.LLM.APIKey = firstNonEmpty(creds.Anthropic.APIKey, cfg.LLM.APIKey)
		}
	}

	notion.Token = firstNonEmpty(notion.Token, os.Getenv("NOTION_TOKEN"))
	notion.DatabaseID = firstNonEmpty(notion.DatabaseID, os.Getenv("NOTION_DATABASE_ID"))
	notion.PostsDatabaseID = firstNonEmpty(notion.PostsDatabaseID, os.Getenv("NOTION_LINKEDIN_DATABASE_ID"))
	cfg.Store.Postgres.DSN = firstNonEmpty(cfg.Store.Postgres.DSN, os.Getenv("DATABASE_URL"))

	return nil
}

// validateStore reports missing article-store credentials
func validateStore(cfg model.Config) error {
	switch cfg.Store.Backend {
	case "notion", "":
		if cfg.Store.Notion.Token == "" || cfg.Store.Notion.DatabaseID == "" {
			return fmt.Errorf("notion credentials missing: set NOTION_TOKEN and NOTION_DATABASE_ID, or create %s", cfg.CredentialsFile)
		}
	case "postgres":
		if cfg.Store.Postgres.DSN == "" {
			return fmt.Errorf("postgres dsn missing: set store.postgres.dsn or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store backend: %s (supported: notion, postgres)", cfg.Store.Backend)
	}
	return nil
}

func readCredentials(path string) (*credentialsFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds credentialsFile
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return &creds, nil
}

func isAnthropic(provider string) bool {
	return provider == "anthropic" || provider == "claude"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
