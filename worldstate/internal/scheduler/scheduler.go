// Package scheduler drives the two periodic loops: ingestion, which runs
// scrape cycles, and notification, which drains change flags and calls the
// notifier once per changed category. The loops never call each other;
// they only meet in the snapshot store behind ChangeSource.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// CycleFunc runs one ingestion cycle. A returned error triggers the
// fallback sleep.
type CycleFunc func(ctx context.Context) error

// NotifyFunc announces that cat changed.
type NotifyFunc func(ctx context.Context, cat mission.Category) error

// ChangeSource is the read side of the snapshot store.
type ChangeSource interface {
	ConsumeChanges() map[mission.Category]bool
	LastScrape() time.Time
}

// Config configures the scheduler.
type Config struct {
	// ScrapeInterval is the target period of the ingestion loop, work
	// included. Default: 5s.
	ScrapeInterval time.Duration
	// MinInterval floors the sleep between cycles. Default: 3s.
	MinInterval time.Duration
	// ErrorBackoff is the sleep after a failed or panicking cycle. Default: 10s.
	ErrorBackoff time.Duration
	// NotifyInterval is the period of the notification loop. Default: 15s.
	NotifyInterval time.Duration

	Clock  clockwork.Clock
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ScrapeInterval <= 0 {
		c.ScrapeInterval = 5 * time.Second
	}
	if c.MinInterval <= 0 {
		c.MinInterval = 3 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 10 * time.Second
	}
	if c.NotifyInterval <= 0 {
		c.NotifyInterval = 15 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Scheduler owns the two loops.
type Scheduler struct {
	cycle   CycleFunc
	changes ChangeSource
	notify  NotifyFunc
	cfg     Config
}

// New creates a Scheduler.
func New(cycle CycleFunc, changes ChangeSource, notify NotifyFunc, cfg Config) *Scheduler {
	cfg.defaults()
	return &Scheduler{cycle: cycle, changes: changes, notify: notify, cfg: cfg}
}

// Run starts both loops and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RunIngestion(ctx) })
	g.Go(func() error { return s.RunNotifications(ctx) })
	return g.Wait()
}

// RunIngestion runs a cycle immediately, then one every ScrapeInterval
// minus the time the cycle took, never sleeping less than MinInterval.
// Failures never stop the loop. Returns nil once ctx is cancelled.
func (s *Scheduler) RunIngestion(ctx context.Context) error {
	log := s.cfg.Logger
	for {
		start := s.cfg.Clock.Now()
		err := s.safeCycle(ctx)
		if ctx.Err() != nil {
			return nil
		}

		wait := s.cfg.ScrapeInterval - s.cfg.Clock.Since(start)
		if wait < s.cfg.MinInterval {
			wait = s.cfg.MinInterval
		}
		if err != nil {
			log.Error("scheduler: cycle failed", "error", err, "backoff", s.cfg.ErrorBackoff)
			wait = s.cfg.ErrorBackoff
		}
		if !s.sleep(ctx, wait) {
			return nil
		}
	}
}

func (s *Scheduler) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scheduler: cycle panic: %v", p)
		}
	}()
	return s.cycle(ctx)
}

// RunNotifications drains the change flags every NotifyInterval and calls
// the notifier once per flagged category. Nothing is drained before the
// first scrape has been recorded. Returns nil once ctx is cancelled.
func (s *Scheduler) RunNotifications(ctx context.Context) error {
	log := s.cfg.Logger
	ticker := s.cfg.Clock.NewTicker(s.cfg.NotifyInterval)
	defer ticker.Stop()

	waiting := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}

		if s.changes.LastScrape().IsZero() {
			if waiting {
				log.Info("scheduler: waiting for first scrape")
				waiting = false
			}
			continue
		}
		s.deliver(ctx)
	}
}

func (s *Scheduler) deliver(ctx context.Context) {
	flags := s.changes.ConsumeChanges()
	for _, cat := range mission.AllCategories() {
		if !flags[cat] {
			continue
		}
		if err := s.notify(ctx, cat); err != nil {
			s.cfg.Logger.Warn("scheduler: notify failed", "category", cat, "error", err)
		}
	}
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-s.cfg.Clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
