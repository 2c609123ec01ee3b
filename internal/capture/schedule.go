package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "ddlcal/internal/log"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule. A run that is still going when
// the next one is due causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	spec string
}

// NewScheduler parses a standard five-field spec (descriptors such as
// "@every 15m" are accepted too) evaluated in loc.
func NewScheduler(ctx context.Context, spec string, loc *time.Location, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := c.AddFunc(spec, func() {
		start := time.Now()
		if err := job(ctx); err != nil {
			appLog.Error("capture: scheduled run failed", err, "spec", spec)
			return
		}
		appLog.Info("capture: scheduled run done", "spec", spec, "elapsed", time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("capture: invalid cron spec %q: %w", spec, err)
	}
	return &Scheduler{cron: c, spec: spec}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	appLog.Info("capture: scheduler started", "spec", s.spec)
	s.cron.Start()
}

// Next reports when the job runs next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop prevents new runs and waits for a running one to finish or for ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// ScheduleCapture wires CaptureCalendarPNG to a cron spec.
func ScheduleCapture(ctx context.Context, spec string, loc *time.Location, opts Options) (*Scheduler, error) {
	if _, err := opts.withDefaults(); err != nil {
		return nil, err
	}
	return NewScheduler(ctx, spec, loc, func(ctx context.Context) error {
		return CaptureCalendarPNG(ctx, opts)
	})
}
