package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/curator/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Curator configuration",
	Long: `Manage Curator configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CURATOR_*, credentials such as NOTION_TOKEN)
3. Config file (~/.curator/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, config file and environment are merged. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(maskSecrets(cfg))
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Println(string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.curator/config.yaml (or --config) with every option set to its default.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := cfgFile
		if configPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("error finding home directory: %w", err)
			}
			configPath = home + "/.curator/config.yaml"
		}

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'curator config show' to view it, or delete it first to recreate", configPath)
		}

		return writeDefaultConfig(configPath)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// loadConfig merges the config file and CURATOR_* variables over the defaults.
// Lists and maps from the file replace the defaults rather than merging.
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	bindEnvKeys(cfg)

	if err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
	}); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	// A config that only lists feed_groups replaces the built-in feeds
	if !viper.IsSet("feeds") && len(cfg.FeedGroups) > 0 {
		cfg.Feeds = nil
	}

	if err := applyCredentials(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// bindEnvKeys registers every scalar config key so AutomaticEnv can override it
func bindEnvKeys(cfg model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	keys := append(leafKeys("", tree), "llm.api_key", "store.notion.token", "cache.redis.password")
	for _, key := range keys {
		_ = viper.BindEnv(key)
	}
}

func leafKeys(prefix string, tree map[string]any) []string {
	var keys []string
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]any:
			keys = append(keys, leafKeys(key, child)...)
		case []any:
			// lists are only configurable from the file
		default:
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func maskSecrets(cfg model.Config) model.Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	cfg.LLM.APIKey = mask(cfg.LLM.APIKey)
	cfg.Store.Notion.Token = mask(cfg.Store.Notion.Token)
	cfg.Store.Postgres.DSN = mask(cfg.Store.Postgres.DSN)
	cfg.Cache.Redis.Password = mask(cfg.Cache.Redis.Password)
	return cfg
}

func writeDefaultConfig(configPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Curator Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (CURATOR_*, e.g. CURATOR_LLM_PROVIDER=openai)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")

	yamlData, mErr := yaml.Marshal(model.DefaultConfig())
	if mErr != nil {
		return fmt.Errorf("error marshaling config: %w", mErr)
	}
	if err == nil {
		_, err = f.Write(yamlData)
	}

	printf("\n# Credentials (recommended to use environment variables or %s instead):\n", model.DefaultConfig().CredentialsFile)
	printf("#   export NOTION_TOKEN=secret_...\n")
	printf("#   export NOTION_DATABASE_ID=...\n")
	printf("#   export NOTION_LINKEDIN_DATABASE_ID=...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created default configuration: %s\n", configPath)
	fmt.Printf("\nTo view the configuration:\n")
	fmt.Printf("  curator config show\n")
	return nil
}
