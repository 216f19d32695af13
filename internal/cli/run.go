package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	runHours   int
	runDryRun  bool
	runTimeout time.Duration
	runTop     int
)

// runCmd executes one full pipeline run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Long: `Collect recent articles, rank them, archive them and draft posts.

With --dry-run only collection and analysis run; nothing is written and no
credentials are needed.

Examples:
  curator run
  curator run --hours 48
  curator run --dry-run --top 30`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().IntVar(&runHours, "hours", 0, "lookback window in hours (default: schedule.lookback_hours)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "collect and rank only, write nothing")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "abort the run after this long")
	runCmd.Flags().IntVar(&runTop, "top", 20, "articles to list in dry-run mode")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	hours := runHours
	if hours <= 0 {
		hours = cfg.Schedule.LookbackHours
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	if runDryRun {
		c, a := buildCollection(cfg, logger)
		collected := c.Collect(ctx, hours)
		ranked := a.Analyze(collected.Articles)
		if n := len(collected.FailedFeeds); n > 0 {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("%d of %d feeds failed", n, collected.Sources)))
		}
		renderRanking(os.Stdout, ranked, runTop)
		return nil
	}

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Info("starting run",
		"lookback_hours", hours,
		"store", cfg.Store.Backend,
		"provider", describeProvider(cfg),
		"posts", app.orchestrator.PostsEnabled())

	rep := app.orchestrator.Run(ctx, hours)
	renderReport(os.Stderr, rep)

	if ctx.Err() != nil {
		return fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	return nil
}
