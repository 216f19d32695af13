package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/curator/internal/orchestrator"
	"github.com/ppiankov/curator/internal/scheduler"
)

var scheduleCron string

// scheduleCmd runs the pipeline on a cron schedule until interrupted
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long: `Run the pipeline repeatedly on a five-field cron schedule.

A tick that fires while a run is still going is skipped.

Examples:
  curator schedule
  curator schedule --cron "0 */6 * * *"`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron spec (default: schedule.cron)")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	spec := firstNonEmpty(scheduleCron, cfg.Schedule.Cron)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	runner := orchestrator.NewRunner(app.orchestrator.Run, cfg.Schedule.LookbackHours)
	sched, err := scheduler.New(ctx, spec, runner, logger)
	if err != nil {
		return err
	}

	sched.Start()
	logger.Info("waiting for schedule", "cron", spec, "provider", describeProvider(cfg))
	<-ctx.Done()

	logger.Info("shutting down")
	sched.Stop()
	return nil
}
