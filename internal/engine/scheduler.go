package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Checker runs one check. *Engine satisfies it.
type Checker interface {
	RunCheck(ctx context.Context) (*domain.RunReport, error)
}

// Scheduler runs checks on a list of cron specs, e.g. one per time window.
type Scheduler struct {
	cron    *cron.Cron
	checker Checker
	log     *slog.Logger
}

// NewScheduler registers checker under every spec, evaluated in loc.
func NewScheduler(
	checker Checker,
	specs []string,
	loc *time.Location,
	log *slog.Logger,
) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:    c,
		checker: checker,
		log:     log,
	}

	for _, spec := range specs {
		if _, err := c.AddFunc(spec, s.runCheck); err != nil {
			return nil, fmt.Errorf("adding schedule %q: %w", spec, err)
		}
	}

	return s, nil
}

// Start begins running scheduled checks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Next returns the next scheduled run, or the zero time when nothing is
// scheduled or the scheduler has not started.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

func (s *Scheduler) runCheck() {
	ctx := context.Background()
	s.log.Info("scheduled check starting")
	report, err := s.checker.RunCheck(ctx)
	if err != nil {
		s.log.Error("scheduled check failed", "error", err)
		return
	}
	if report.Paused {
		s.log.Info("scheduled check skipped (paused)")
	}
}
