// Package worldstate scrapes the live fissure list and the arbitration log,
// keeps the latest and the last informative value of every category, and
// flags a category whenever its informative value changes.
//
// A Service owns the whole pipeline: fetcher, parser, TTL cache, snapshot
// store, statistics and the two scheduler loops. Display code reads it
// through GetCurrent and ConsumeChanges, or receives Events from notifiers.
package worldstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ffhgterh111-hub/LFGWarframeMain/idgen"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/browser"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/change"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/fetcher"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/notify"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/parser"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/scheduler"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/snapshot"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/stats"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/ttlcache"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

var (
	// ErrRateLimited is returned by ForceRefresh when the caller's context
	// ends before the refresh limiter lets the cycle start.
	ErrRateLimited = errors.New("worldstate: refresh rate limited")
	// ErrAllSourcesFailed is wrapped by a cycle in which no page could be fetched.
	ErrAllSourcesFailed = errors.New("worldstate: all sources failed")
)

// Source names, used as fetch labels and stats keys.
const (
	sourceFissures    = "fissures"
	sourceArbitration = "arbitration"
)

// CacheCount is the hit/miss pair for one cache key.
type CacheCount = ttlcache.Stats

// StatsSnapshot is a point-in-time copy of the pipeline counters.
type StatsSnapshot = stats.Snapshot

// Service is the owned state object of the pipeline. Create one with New,
// start it with Run and release it with Close.
type Service struct {
	cfg    *Config
	logger *slog.Logger
	clock  clockwork.Clock

	fetch   fetcher.Fetcher
	closers []func() error
	parser  *parser.Parser
	cache   *ttlcache.Cache[mission.Category, mission.State]
	tiers   *ttlcache.Cache[mission.ArbitrationTier, tierResult]
	store   *snapshot.Store
	stats   *stats.Sink
	notify  *notify.Router
	sched   *scheduler.Scheduler
	extra   []Notifier

	cycleMu   sync.Mutex // one cycle at a time
	lastCycle atomicString

	refreshLimiter *rate.Limiter
	group          singleflight.Group
}

type atomicString struct{ v atomic.Value }

func (a *atomicString) Store(s string) { a.v.Store(s) }

func (a *atomicString) Load() string {
	s, _ := a.v.Load().(string)
	return s
}

type tierResult struct {
	window mission.Window
	found  bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock injects the time source used by the cache, the loops and the
// stats.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithFetcher replaces the engine built from the configuration. The caller
// keeps ownership of f.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *Service) { s.fetch = f }
}

// WithNotifiers adds notifiers on top of those in the configuration.
func WithNotifiers(ns ...Notifier) Option {
	return func(s *Service) { s.extra = append(s.extra, ns...) }
}

// New builds a Service from cfg. A nil cfg means DefaultConfig().
func New(cfg *Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
		store:  snapshot.New(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.notify = notify.NewRouter(s.logger, append(notifiersFromConfig(cfg.Notifiers, s.logger), s.extra...)...)

	s.stats = stats.New(s.clock)
	s.parser = parser.New(parser.WithLocale(cfg.Parser.Locale))
	s.cache = ttlcache.New(
		ttlcache.WithClock[mission.Category, mission.State](s.clock),
		ttlcache.WithObserver[mission.Category, mission.State](func(k mission.Category, hit bool) {
			s.stats.CacheLookup(string(k), hit)
		}),
	)
	s.tiers = ttlcache.New(
		ttlcache.WithClock[mission.ArbitrationTier, tierResult](s.clock),
		ttlcache.WithObserver[mission.ArbitrationTier, tierResult](func(t mission.ArbitrationTier, hit bool) {
			s.stats.CacheLookup("tier_"+string(t), hit)
		}),
	)

	limit := rate.Inf
	if cfg.Refresh.Interval > 0 {
		limit = rate.Every(cfg.Refresh.Interval)
	}
	s.refreshLimiter = rate.NewLimiter(limit, cfg.Refresh.Burst)

	if s.fetch == nil {
		s.fetch = s.buildFetcher()
	}

	s.sched = scheduler.New(
		func(ctx context.Context) error { return s.cycle(ctx, true) },
		s.store,
		s.deliver,
		scheduler.Config{
			ScrapeInterval: cfg.Scheduler.ScrapeInterval,
			MinInterval:    cfg.Scheduler.MinInterval,
			ErrorBackoff:   cfg.Scheduler.ErrorBackoff,
			NotifyInterval: cfg.Scheduler.NotifyInterval,
			Clock:          s.clock,
			Logger:         s.logger,
		},
	)
	return s, nil
}

func (s *Service) buildFetcher() fetcher.Fetcher {
	fc := s.cfg.Fetch
	var engine fetcher.Engine
	switch fc.Engine {
	case "http":
		engine = fetcher.NewHTTPEngine(
			fetcher.WithUserAgent(fc.UserAgent),
			fetcher.WithAcceptLanguage(fc.AcceptLanguage),
			fetcher.WithHTTPLogger(s.logger),
		)
	default:
		bc := s.cfg.Browser
		mgr := browser.NewManager(browser.Config{
			RemoteURL:        bc.Remote,
			Bin:              bc.Bin,
			Headful:          bc.Headful,
			RecycleInterval:  bc.RecycleInterval,
			ResourceBlocking: bc.ResourceBlocking,
			Logger:           s.logger,
		})
		s.closers = append(s.closers, mgr.Close)
		engine = fetcher.NewBrowserEngine(mgr, fetcher.BrowserOptions{
			ReadyTimeout:   fc.ReadyTimeout,
			Settle:         fc.Settle,
			UserAgent:      fc.UserAgent,
			AcceptLanguage: fc.AcceptLanguage,
			Width:          bc.ViewportWidth,
			Height:         bc.ViewportHeight,
		})
	}

	client := fetcher.New(engine, fetcher.Config{
		MaxAttempts: fc.MaxAttempts,
		RetryDelay:  fc.RetryDelay,
		Timeout:     fc.Timeout,
		Clock:       s.clock,
		Recorder:    s.stats,
		Logger:      s.logger,
	})
	// The worker must stop before the browser it drives.
	s.closers = append([]func() error{func() error { client.Close(); return nil }}, s.closers...)
	return client
}

// Run starts the ingestion loop, and the notification loop when at least
// one notifier is configured. Without notifiers the change flags are left
// for ConsumeChanges callers. Run blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("worldstate: starting",
		"engine", s.cfg.Fetch.Engine,
		"notifiers", s.notify.Len(),
		"scrape_interval", s.cfg.Scheduler.ScrapeInterval,
	)
	if s.notify.Len() == 0 {
		return s.sched.RunIngestion(ctx)
	}
	return s.sched.Run(ctx)
}

// Close releases the fetcher, the browser and the notifiers.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.notify.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetCurrent returns the latest value of cat, informative or not.
func (s *Service) GetCurrent(cat mission.Category) mission.Entry {
	return s.store.CurrentCategory(cat)
}

// ConsumeChanges returns every category's change flag and clears them.
func (s *Service) ConsumeChanges() map[mission.Category]bool {
	return s.store.ConsumeChanges()
}

// CacheStats returns hit and miss counts per category.
func (s *Service) CacheStats() map[mission.Category]CacheCount {
	return s.cache.Stats()
}

// Stats returns the pipeline counters.
func (s *Service) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// MetricsHandler serves the Prometheus metrics of this service.
func (s *Service) MetricsHandler() http.Handler {
	return s.stats.Handler()
}

// ForceRefresh runs one cycle now, skipping the cache short-circuit, and
// returns once it is done. Concurrent callers share one cycle. With a
// refresh interval configured, a call waits for the limiter first and gets
// ErrRateLimited if ctx ends before the wait would.
func (s *Service) ForceRefresh(ctx context.Context) error {
	_, err, shared := s.group.Do("refresh", func() (any, error) {
		if err := s.refreshLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return nil, s.cycle(ctx, false)
	})
	if shared {
		s.logger.Debug("worldstate: refresh coalesced")
	}
	return err
}

// deliver is the scheduler's NotifyFunc.
func (s *Service) deliver(ctx context.Context, cat mission.Category) error {
	ev := notify.Event{
		ID:       idgen.Event(),
		Category: cat,
		Entry:    s.store.CurrentCategory(cat),
		At:       s.clock.Now().UTC(),
	}
	if err := s.notify.Notify(ctx, ev); err != nil {
		s.stats.Error(err)
		return err
	}
	return nil
}

// cycle runs one ingestion pass. useCache enables the short-circuit that
// replays cached values when every category was cached recently.
func (s *Service) cycle(ctx context.Context, useCache bool) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	id := idgen.Cycle()
	s.lastCycle.Store(id)
	start := s.clock.Now()
	log := s.logger.With("cycle", id)
	defer func() { s.stats.CycleDuration(s.clock.Since(start)) }()

	if useCache {
		if cached, ok := s.cached(); ok {
			log.Debug("worldstate: cycle served from cache")
			s.commit(log, cached, start)
			return nil
		}
	}

	next := s.store.Current()
	var errs []error

	if normal, sp, err := s.scrapeFissures(ctx); err != nil {
		errs = append(errs, err)
	} else {
		next.Fissures, next.SteelPathFissures = normal, sp
	}
	if sched, err := s.scrapeArbitration(ctx); err != nil {
		errs = append(errs, err)
	} else {
		next.Arbitration = sched
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(errs) == 2 {
		err := fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
		s.stats.ScrapeFailed(err)
		return err
	}
	s.stats.ScrapeSucceeded()
	s.commit(log, next, s.clock.Now())
	return nil
}

func (s *Service) commit(log *slog.Logger, next mission.State, at time.Time) {
	changed := s.store.SetState(next, at.UTC())
	for _, cat := range mission.AllCategories() {
		if changed[cat] {
			s.stats.Changed(string(cat))
			log.Info("worldstate: category changed", "category", cat)
		}
	}
	log.Debug("worldstate: cycle done",
		"fissures", len(next.Fissures),
		"steel_path", len(next.SteelPathFissures),
		"arbitration_known", next.Arbitration.Known(),
	)
}

// cached assembles a state from the cache when every category was stored
// within the reuse window.
func (s *Service) cached() (mission.State, bool) {
	var st mission.State
	for _, cat := range mission.AllCategories() {
		v, ok := s.cache.Fresh(cat, s.cfg.Scheduler.CacheReuseWindow)
		if !ok {
			return mission.State{}, false
		}
		st.CopyFrom(cat, v)
	}
	return st, true
}

func (s *Service) scrapeFissures(ctx context.Context) (normal, sp []mission.Fissure, err error) {
	body, err := s.fetch.Fetch(ctx, fetcher.Source{
		Name:          sourceFissures,
		URL:           s.cfg.Sources.Fissures,
		ReadySelector: "table",
	})
	if err != nil {
		s.stats.SourceFailed(sourceFissures, err)
		s.logger.Warn("worldstate: fissure fetch failed", "error", err)
		return nil, nil, err
	}
	normal, sp = s.parser.FissurePage(body, s.clock.Now().UTC())
	s.remember(mission.Fissures, mission.State{Fissures: normal}, s.cfg.Cache.FissuresTTL)
	s.remember(mission.SteelPathFissures, mission.State{SteelPathFissures: sp}, s.cfg.Cache.SteelPathTTL)
	return normal, sp, nil
}

func (s *Service) scrapeArbitration(ctx context.Context) (mission.Schedule, error) {
	body, err := s.fetch.Fetch(ctx, fetcher.Source{
		Name:          sourceArbitration,
		URL:           s.cfg.Sources.Arbitration,
		ReadySelector: "#log",
	})
	if err != nil {
		s.stats.SourceFailed(sourceArbitration, err)
		s.logger.Warn("worldstate: arbitration fetch failed", "error", err)
		return mission.Schedule{}, err
	}
	sched := s.parser.Arbitration(body, s.clock.Now().UTC())
	s.remember(mission.Arbitration, mission.State{Arbitration: sched}, s.cfg.Cache.ArbitrationTTL)
	return sched, nil
}

// remember caches an informative value. Blank renders are never cached, so
// the next cycle fetches again instead of replaying them.
func (s *Service) remember(cat mission.Category, v mission.State, ttl time.Duration) {
	if snapshot.Informative(cat, v) {
		s.cache.Set(cat, v, ttl)
	}
}

// EarliestArbitration returns the active or next window of the given tier.
// Tiers with a filtered log page are looked up there and cached; other
// tiers are answered from the current schedule.
func (s *Service) EarliestArbitration(ctx context.Context, tier mission.ArbitrationTier) (mission.Window, bool, error) {
	url, ok := s.cfg.Sources.Tiers[string(tier)]
	if !ok {
		cur := s.store.Current()
		w, found := parser.EarliestOfTier(cur.Arbitration, tier)
		return w, found, nil
	}
	if r, hit := s.tiers.Get(tier); hit {
		return r.window, r.found, nil
	}

	v, err, _ := s.group.Do("tier:"+string(tier), func() (any, error) {
		body, err := s.fetch.Fetch(ctx, fetcher.Source{
			Name:          "tier_" + string(tier),
			URL:           url,
			ReadySelector: "#log",
		})
		if err != nil {
			s.stats.SourceFailed(sourceArbitration, err)
			return tierResult{}, fmt.Errorf("worldstate: tier %s: %w", tier, err)
		}
		sched := s.parser.Arbitration(body, s.clock.Now().UTC())
		w, found := parser.EarliestOfTier(sched, tier)
		r := tierResult{window: w, found: found}
		if found {
			s.tiers.Set(tier, r, s.cfg.Cache.TierTTL)
		}
		return r, nil
	})
	if err != nil {
		return mission.Window{}, false, err
	}
	r := v.(tierResult)
	return r.window, r.found, nil
}

// CategoryStatus summarises one category.
type CategoryStatus struct {
	Count  int    `json:"count"`
	Tier   string `json:"tier,omitempty"`
	Node   string `json:"node,omitempty"`
	Active bool   `json:"active,omitempty"`
	Digest string `json:"digest"`
}

// Status is the operator view of the service.
type Status struct {
	LastScrape time.Time                           `json:"last_scrape,omitzero"`
	LastCycle  string                              `json:"last_cycle,omitempty"`
	Categories map[mission.Category]CategoryStatus `json:"categories"`
	Stats      StatsSnapshot                       `json:"stats"`
	Intervals  map[string]string                   `json:"intervals"`
}

// Status reports the latest scrape, a per-category summary and counters.
func (s *Service) Status() Status {
	cur := s.store.Current()
	digests := change.Digest(cur)
	cats := make(map[mission.Category]CategoryStatus, 3)
	for _, cat := range mission.AllCategories() {
		cs := CategoryStatus{Digest: digests[cat]}
		if cat == mission.Arbitration {
			cs.Count = len(cur.Arbitration.Upcoming)
			if c := cur.Arbitration.Current; cur.Arbitration.Known() {
				cs.Tier = c.Tier.String()
				cs.Node = c.Node.String()
				cs.Active = c.Active
				cs.Count++
			}
		} else {
			cs.Count = len(cur.FissuresFor(cat))
		}
		cats[cat] = cs
	}

	sc := s.cfg.Scheduler
	return Status{
		LastScrape: s.store.LastScrape(),
		LastCycle:  s.lastCycle.Load(),
		Categories: cats,
		Stats:      s.stats.Snapshot(),
		Intervals: map[string]string{
			"scrape":      sc.ScrapeInterval.String(),
			"min":         sc.MinInterval.String(),
			"error":       sc.ErrorBackoff.String(),
			"notify":      sc.NotifyInterval.String(),
			"cache_reuse": sc.CacheReuseWindow.String(),
		},
	}
}
