package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/catalog"
	"github.com/kamusis/skill-cortex/internal/config"
	"github.com/kamusis/skill-cortex/internal/logger"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "skill-cortex",
	Short:        "Skill Cortex — index, browse and retag SKILL.md documents",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Skill Cortex scans one or more skill roots for SKILL.md documents,
builds a category tree and a tag-validated index, caches it on disk and
serves it to AI agents over MCP.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(flagLogLevel); err != nil {
			return err
		}
		logger.SetLogFormat(flagLogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.skill-cortex/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text or json)")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config selected by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, nil
}

// newCatalog builds a catalog from cfg.
func newCatalog(cfg *config.Config) *catalog.Catalog {
	return catalog.New(catalog.Options{
		Roots:        cfg.Roots,
		CachePath:    cfg.CachePath,
		TaxonomyPath: cfg.TagsPath,
		LockTimeout:  cfg.LockTimeout,
	})
}

// openCatalog loads the config and the index.
func openCatalog(ctx context.Context) (*config.Config, *catalog.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cat := newCatalog(cfg)
	if err := cat.EnsureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}
