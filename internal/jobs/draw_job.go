// Package jobs holds the scheduled triggers that call into the services.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
	"golang.org/x/exp/slog"
)

// DrawableLister finds events whose draw is due
type DrawableLister interface {
	ListDrawable(ctx context.Context, now time.Time) ([]*models.LotteryEvent, error)
}

// DrawJob attempts a draw for every due event. It implements cron.Job.
type DrawJob struct {
	events  DrawableLister
	draws   services.DrawService
	timeout time.Duration
	now     func() time.Time

	running  atomic.Bool
	runs     atomic.Int64
	drawn    atomic.Int64
	failures atomic.Int64
}

// Stats is a snapshot of the job counters
type Stats struct {
	Runs     int64
	Drawn    int64
	Failures int64
}

// NewDrawJob creates a DrawJob. timeout bounds a single run.
func NewDrawJob(events DrawableLister, draws services.DrawService, timeout time.Duration) *DrawJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &DrawJob{
		events:  events,
		draws:   draws,
		timeout: timeout,
		now:     time.Now,
	}
}

// Run is the cron entry point. A run still in progress makes the next tick a no-op.
func (j *DrawJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Debug("Draw job still running, skipping tick")
		return
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.RunOnce(ctx); err != nil {
		slog.Error("Draw job failed", "error", err)
	}
}

// RunOnce draws every event that is due now
func (j *DrawJob) RunOnce(ctx context.Context) error {
	j.runs.Inc()

	due, err := j.events.ListDrawable(ctx, j.now())
	if err != nil {
		j.failures.Inc()
		return fmt.Errorf("list drawable events: %w", err)
	}

	for _, event := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result, err := j.draws.AttemptDraw(ctx, event.ID)
		if err != nil {
			j.failures.Inc()
			slog.Error("Scheduled draw failed", "error", err, "eventId", event.ID.Hex())
			continue
		}
		switch result.Status {
		case models.DrawOutcomeSuccess, models.DrawOutcomeCancelled:
			j.drawn.Inc()
		case models.DrawOutcomePersistenceFailure:
			j.failures.Inc()
		}
		slog.Debug("Scheduled draw attempted", "eventId", event.ID.Hex(), "status", result.Status)
	}
	return nil
}

// Stats returns the current counters
func (j *DrawJob) Stats() Stats {
	return Stats{
		Runs:     j.runs.Load(),
		Drawn:    j.drawn.Load(),
		Failures: j.failures.Load(),
	}
}

// NewScheduler returns a cron scheduler running job on spec, e.g. "@every 1m".
// The caller starts and stops it.
func NewScheduler(spec string, job cron.Job) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule draw job %q: %w", spec, err)
	}
	return c, nil
}
