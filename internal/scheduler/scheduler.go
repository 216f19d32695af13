package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ppiankov/curator/internal/orchestrator"
)

// Scheduler triggers runs on a cron spec
type Scheduler struct {
	cron   *cron.Cron
	runner *orchestrator.Runner
	ctx    context.Context
	logger *slog.Logger
}

// New registers the run job. The spec uses the standard five-field format.
func New(ctx context.Context, spec string, runner *orchestrator.Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:   cron.New(),
		runner: runner,
		ctx:    ctx,
		logger: logger.With("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("scheduler started", "next", e.Next)
	}
}

// Stop halts the schedule and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}

	rep, err := s.runner.RunNow(s.ctx)
	if errors.Is(err, orchestrator.ErrRunInProgress) {
		s.logger.Warn("scheduled run skipped, previous run still active")
		return
	}
	s.logger.Info("scheduled run complete", "run_id", rep.RunID, "errors", len(rep.Errors))
}
