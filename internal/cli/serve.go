package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/curator/internal/api"
	"github.com/ppiankov/curator/internal/orchestrator"
	"github.com/ppiankov/curator/internal/scheduler"
)

var (
	serveAddr string
	serveCron string
)

// serveCmd exposes the HTTP API, optionally with the scheduler alongside
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve health, run triggering and the last run report over HTTP.

Endpoints:
  GET  /health
  POST /api/v1/runs       start a run (409 if one is in progress)
  GET  /api/v1/runs/last  last run report

With --cron the scheduler runs in the same process and shares the run lock.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().StringVar(&serveCron, "cron", "", "also run on this cron spec")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	runner := orchestrator.NewRunner(app.orchestrator.Run, cfg.Schedule.LookbackHours)

	if serveCron != "" {
		sched, err := scheduler.New(ctx, serveCron, runner, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	addr := firstNonEmpty(serveAddr, cfg.Server.Addr)
	logger.Info("serving", "addr", addr, "provider", describeProvider(cfg))
	return api.NewServer(ctx, runner, cfg.Report.Path, logger).ListenAndServe(ctx, addr)
}
