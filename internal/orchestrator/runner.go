package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/ppiankov/curator/internal/model"
)

// ErrRunInProgress is returned when a run is requested while another is active
var ErrRunInProgress = errors.New("run already in progress")

// RunFunc executes one run; Orchestrator.Run satisfies it
type RunFunc func(ctx context.Context, lookbackHours int) *model.RunReport

// Runner allows one run at a time and keeps the last report.
// The scheduler and the HTTP surface share one Runner.
type Runner struct {
	run           RunFunc
	lookbackHours int

	mu      sync.Mutex
	running bool
	last    *model.RunReport
}

// NewRunner creates a Runner; lookbackHours <= 0 means 24
func NewRunner(run RunFunc, lookbackHours int) *Runner {
	if lookbackHours <= 0 {
		lookbackHours = 24
	}
	return &Runner{run: run, lookbackHours: lookbackHours}
}

// RunNow runs synchronously
func (r *Runner) RunNow(ctx context.Context) (*model.RunReport, error) {
	if !r.acquire() {
		return nil, ErrRunInProgress
	}
	rep := r.run(ctx, r.lookbackHours)
	r.release(rep)
	return rep, nil
}

// Trigger starts a run in the background. The channel receives the report
// once the run finishes; ok is false when another run is active.
func (r *Runner) Trigger(ctx context.Context) (done <-chan *model.RunReport, ok bool) {
	if !r.acquire() {
		return nil, false
	}

	ch := make(chan *model.RunReport, 1)
	go func() {
		rep := r.run(ctx, r.lookbackHours)
		r.release(rep)
		ch <- rep
		close(ch)
	}()
	return ch, true
}

// Running reports whether a run is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Last returns the most recent finished report, or nil
func (r *Runner) Last() *model.RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *Runner) release(rep *model.RunReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if rep != nil {
		r.last = rep
	}
}
