package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamusis/skill-cortex/internal/logger"
	"github.com/kamusis/skill-cortex/internal/mcpserver"
	"github.com/kamusis/skill-cortex/internal/watch"
)

var flagServeWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill index to AI agents over MCP (stdio)",
	Long: `Run an MCP server on stdin/stdout exposing the tools list_skill_tree,
search_skills, get_skill_details and update_tags. Logs go to stderr.

With --watch, any change under the roots triggers a full rescan.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Rescan when files under the roots change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.G(ctx)

	log.WithField("roots", cfg.Roots).
		WithField("cache_path", cfg.CachePath).
		WithField("tags_path", cfg.TagsPath).
		Info("starting MCP server")

	cat := newCatalog(cfg)
	if err := cat.EnsureLoaded(ctx); err != nil {
		return err
	}

	if flagServeWatch {
		w, err := watch.New(ctx, watch.Config{
			Roots:  cat.Options().Roots,
			Ignore: cfg.Excludes,
			OnChange: func(ctx context.Context) error {
				_, err := cat.Rescan(ctx)
				return err
			},
		})
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.WithError(err).Error("watcher stopped")
			}
		}()
		log.WithField("roots", w.Roots()).Info("watching roots for changes")
	}

	return mcpserver.ServeStdio(mcpserver.New(cat, version))
}
