// Package engine runs stock checks: pause gate, concurrent fetch,
// classification, transition tracking, snapshot persistence and
// notification.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/restock-monitor/internal/classify"
	"github.com/donaldgifford/restock-monitor/internal/fetch"
	"github.com/donaldgifford/restock-monitor/internal/metrics"
	"github.com/donaldgifford/restock-monitor/internal/notify"
	"github.com/donaldgifford/restock-monitor/internal/pause"
	"github.com/donaldgifford/restock-monitor/internal/state"
	"github.com/donaldgifford/restock-monitor/internal/tracker"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Engine orchestrates one check run over the configured items.
type Engine struct {
	items      []domain.TrackedItem
	fetcher    fetch.Fetcher
	classifier *classify.Classifier
	store      state.Store
	notifier   notify.Notifier
	pause      pause.Flag
	log        *slog.Logger

	concurrency int
	warmUp      bool
	warmUpDelay time.Duration
	now         func() time.Time

	// mu serializes runs started in this process (cron plus API trigger).
	mu      sync.Mutex
	last    *domain.RunReport
	lastAt  time.Time
	lastErr error
}

// NewEngine creates a new Engine with injected dependencies. Items are
// checked and reported in the given order.
func NewEngine(
	items []domain.TrackedItem,
	f fetch.Fetcher,
	c *classify.Classifier,
	s state.Store,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		items:       append([]domain.TrackedItem(nil), items...),
		fetcher:     f,
		classifier:  c,
		store:       s,
		notifier:    n,
		log:         slog.Default(),
		concurrency: max(len(items), 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithPauseFlag sets the flag consulted at the start of every run. Without
// one the engine never pauses.
func WithPauseFlag(f pause.Flag) EngineOption {
	return func(e *Engine) {
		e.pause = f
	}
}

// WithConcurrency caps the number of simultaneous fetches.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithWarmUp fetches the first item once and waits delay before the real
// checks.
func WithWarmUp(delay time.Duration) EngineOption {
	return func(e *Engine) {
		e.warmUp = true
		e.warmUpDelay = delay
	}
}

// WithClock overrides the time source used for notification timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Items returns the tracked items in check order.
func (eng *Engine) Items() []domain.TrackedItem {
	return append([]domain.TrackedItem(nil), eng.items...)
}

// LastRun returns the report and time of the most recent run, if any.
func (eng *Engine) LastRun() (*domain.RunReport, time.Time, error) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.last, eng.lastAt, eng.lastErr
}

// RunCheck executes one full check run. A paused run returns a report with
// Paused set and touches nothing else. Notification failures are counted
// in the report, not returned. Snapshot load and save failures are returned.
func (eng *Engine) RunCheck(ctx context.Context) (*domain.RunReport, error) {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	began := time.Now()
	start := eng.now()
	report, err := eng.run(ctx)

	metrics.RunDuration.Observe(time.Since(began).Seconds())
	switch {
	case err != nil:
		metrics.RunsTotal.WithLabelValues("failed").Inc()
	case report.Paused:
		metrics.RunsTotal.WithLabelValues("paused").Inc()
	default:
		metrics.RunsTotal.WithLabelValues("completed").Inc()
		metrics.LastRunTimestamp.Set(float64(eng.now().Unix()))
	}

	eng.last, eng.lastAt, eng.lastErr = report, start, err
	return report, err
}

func (eng *Engine) run(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{}

	if eng.paused(ctx) {
		eng.log.Info("monitoring paused, skipping check")
		report.Paused = true
		return report, nil
	}

	eng.log.Info("check starting", "items", len(eng.items), "at", notify.TimeLabel(eng.now()))

	loaded, err := eng.store.Load(ctx)
	if err != nil {
		metrics.SnapshotErrorsTotal.Inc()
		return report, fmt.Errorf("loading snapshot: %w", err)
	}
	snap := tracker.NewSnapshot(loaded)

	if eng.warmUp {
		if err := eng.doWarmUp(ctx); err != nil {
			return report, err
		}
	}

	results := eng.fetchAll(ctx)

	var msgs []notify.Message
	for i, item := range eng.items {
		c := eng.classify(item, results[i])
		report.Results = append(report.Results, c)

		d := snap.Evaluate(item, c.Availability)
		if d.Next.Known() {
			metrics.ItemInStock.WithLabelValues(item.Code).Set(boolGauge(d.Next == domain.InStock))
		}
		if d.Changed {
			metrics.TransitionsTotal.WithLabelValues(d.Next.String()).Inc()
			if d.Prev == domain.InStock && d.Next == domain.OutOfStock {
				eng.log.Info("item went out of stock (no notification)", "item", item.Code)
			}
		}
		if d.Notify {
			msgs = append(msgs, notify.RestockMessage(item, eng.now()))
			report.Notified = append(report.Notified, item.Code)
		}
	}

	var saveErr error
	if snap.Changed() {
		if err := eng.store.Save(ctx, snap.Entries()); err != nil {
			metrics.SnapshotErrorsTotal.Inc()
			saveErr = fmt.Errorf("saving snapshot: %w", err)
		} else {
			report.SnapshotChanged = true
			metrics.SnapshotWritesTotal.Inc()
			eng.log.Info("snapshot updated")
		}
	}

	if len(msgs) > 0 {
		if err := eng.notifier.SendBatch(ctx, msgs); err != nil {
			report.NotifyErrors = notify.FailedChunks(err)
			eng.log.Error("sending restock notifications", "count", len(msgs), "error", err)
		} else {
			eng.log.Info("restock notifications sent", "count", len(msgs))
		}
	} else {
		eng.log.Info("no new restocks")
	}

	eng.log.Info("check finished",
		"notified", len(report.Notified),
		"snapshot_changed", report.SnapshotChanged,
		"at", notify.TimeLabel(eng.now()),
	)

	return report, saveErr
}

// paused reads the flag once. Read failures fail open.
func (eng *Engine) paused(ctx context.Context) bool {
	if eng.pause == nil {
		return false
	}

	p, err := eng.pause.Paused(ctx)
	if err != nil {
		eng.log.Warn("reading pause flag failed, continuing", "backend", eng.pause.Backend(), "error", err)
		return false
	}

	metrics.Paused.Set(boolGauge(p))
	return p
}

func (eng *Engine) doWarmUp(ctx context.Context) error {
	if len(eng.items) == 0 {
		return nil
	}

	res := eng.fetcher.Fetch(ctx, eng.items[0].URL)
	eng.log.Debug("warm-up fetch", "item", eng.items[0].Code, "status", res.StatusCode, "error", res.Err)

	if eng.warmUpDelay <= 0 {
		return nil
	}

	t := time.NewTimer(eng.warmUpDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("warm-up interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// fetchAll fetches every item concurrently. Each goroutine writes only its
// own slot.
func (eng *Engine) fetchAll(ctx context.Context) []fetch.Result {
	results := make([]fetch.Result, len(eng.items))

	var g errgroup.Group
	g.SetLimit(eng.concurrency)

	for i, item := range eng.items {
		g.Go(func() error {
			start := time.Now()
			results[i] = eng.fetcher.Fetch(ctx, item.URL)
			metrics.FetchDuration.Observe(time.Since(start).Seconds())
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (eng *Engine) classify(item domain.TrackedItem, res fetch.Result) domain.Classification {
	avail, reason := eng.classifier.Classify(res)
	metrics.ChecksTotal.WithLabelValues(item.Code, avail.String()).Inc()

	level := slog.LevelInfo
	if !avail.Known() {
		level = slog.LevelWarn
	}
	eng.log.Log(context.Background(), level, "item checked",
		"item", item.Code,
		"name", item.Name,
		"availability", avail.String(),
		"reason", reason,
		"at", notify.ClockLabel(eng.now()),
	)

	return domain.Classification{Item: item, Availability: avail, Reason: reason}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
