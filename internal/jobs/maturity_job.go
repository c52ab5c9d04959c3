// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// MaturityJob runs the maturity sweep on a cron schedule and dispatches the
// resulting events.
type MaturityJob struct {
	sweeper    portssvc.MaturitySvc
	dispatcher portssvc.EventDispatcher
	logger     *slog.Logger
	clock      func() time.Time
	timeout    time.Duration
	cron       *cron.Cron
}

// NewMaturityJob registers the sweep under schedule, a standard cron spec or
// a descriptor such as "@every 1h".
func NewMaturityJob(schedule string, sweeper portssvc.MaturitySvc, dispatcher portssvc.EventDispatcher, logger *slog.Logger) (*MaturityJob, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &MaturityJob{
		sweeper:    sweeper,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("job", "maturity_sweep")),
		clock:      time.Now,
		timeout:    5 * time.Minute,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid maturity sweep schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins running the schedule in its own goroutine.
func (j *MaturityJob) Start() {
	j.cron.Start()
	j.logger.Info("Maturity sweep scheduled")
}

// Stop stops the scheduler and waits for a running sweep up to ctx.
func (j *MaturityJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("Maturity sweep still running at shutdown")
	}
}

// Run performs one sweep. Partial failures are logged; the flagged invoices
// still have their events dispatched.
func (j *MaturityJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	started := j.clock()
	events, err := j.sweeper.SweepMatured(ctx, started)
	if err != nil {
		j.logger.Error("Maturity sweep finished with errors", slog.String("error", err.Error()))
	}
	if len(events) > 0 && j.dispatcher != nil {
		j.dispatcher.Dispatch(ctx, events)
	}
	j.logger.Info("Maturity sweep ran",
		slog.Int("matured", len(events)),
		slog.Duration("took", time.Since(started)))
}
