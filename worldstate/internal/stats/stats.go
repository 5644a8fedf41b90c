// Package stats counts what the pipeline does and exposes the counters both
// as a JSON-able snapshot and as Prometheus metrics on a private registry.
package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "worldstate_"

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultHit     = "hit"
	resultMiss    = "miss"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalScrapes      uint64                `json:"total_scrapes"`
	SuccessfulScrapes uint64                `json:"successful_scrapes"`
	FailedScrapes     uint64                `json:"failed_scrapes"`
	FissureErrors     uint64                `json:"fissures_errors"`
	ArbitrationErrors uint64                `json:"arbitration_errors"`
	FetchAttempts     uint64                `json:"fetch_attempts"`
	FetchRetries      uint64                `json:"fetch_retries"`
	CacheHits         uint64                `json:"cache_hits"`
	CacheMisses       uint64                `json:"cache_misses"`
	Cache             map[string]CacheCount `json:"cache"`
	LastError         string                `json:"last_error,omitempty"`
	LastErrorTime     time.Time             `json:"last_error_time,omitzero"`
	StartTime         time.Time             `json:"start_time"`
	Uptime            string                `json:"uptime"`
}

// CacheCount is the hit/miss pair for one cache key.
type CacheCount struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Sink is safe for concurrent use.
type Sink struct {
	clock clockwork.Clock

	mu   sync.Mutex
	snap Snapshot

	registry      *prometheus.Registry
	scrapes       *prometheus.CounterVec
	sourceErrors  *prometheus.CounterVec
	fetchAttempts prometheus.Counter
	fetchRetries  prometheus.Counter
	cacheLookups  *prometheus.CounterVec
	changes       *prometheus.CounterVec
	cycleDuration prometheus.Histogram
}

// New creates a sink whose start time is now.
func New(clock clockwork.Clock) *Sink {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Sink{
		clock:    clock,
		registry: prometheus.NewRegistry(),
		scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "scrapes_total",
			Help: "Ingestion cycles by result",
		}, []string{"result"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "source_errors_total",
			Help: "Failed fetches by source page",
		}, []string{"source"}),
		fetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "fetch_attempts_total",
			Help: "Individual fetch attempts, retries included",
		}),
		fetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "fetch_retries_total",
			Help: "Fetch attempts that followed a failed one",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "cache_lookups_total",
			Help: "Cache lookups by key and result",
		}, []string{"category", "result"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "changes_total",
			Help: "Detected changes by category",
		}, []string{"category"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "cycle_duration_seconds",
			Help:    "Ingestion cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
	s.snap.StartTime = clock.Now()
	s.snap.Cache = make(map[string]CacheCount)

	s.registry.MustRegister(
		s.scrapes,
		s.sourceErrors,
		s.fetchAttempts,
		s.fetchRetries,
		s.cacheLookups,
		s.changes,
		s.cycleDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// ScrapeSucceeded counts a completed ingestion cycle.
func (s *Sink) ScrapeSucceeded() {
	s.mu.Lock()
	s.snap.TotalScrapes++
	s.snap.SuccessfulScrapes++
	s.mu.Unlock()
	s.scrapes.WithLabelValues(resultSuccess).Inc()
}

// ScrapeFailed counts a failed cycle and records err as the last error.
func (s *Sink) ScrapeFailed(err error) {
	s.mu.Lock()
	s.snap.TotalScrapes++
	s.snap.FailedScrapes++
	s.recordLocked(err)
	s.mu.Unlock()
	s.scrapes.WithLabelValues(resultFailure).Inc()
}

// SourceFailed records a fetch that gave up for one source page. source is
// "fissures" or "arbitration"; other values only reach Prometheus.
func (s *Sink) SourceFailed(source string, err error) {
	s.mu.Lock()
	switch source {
	case "fissures":
		s.snap.FissureErrors++
	case "arbitration":
		s.snap.ArbitrationErrors++
	}
	s.recordLocked(err)
	s.mu.Unlock()
	s.sourceErrors.WithLabelValues(source).Inc()
}

// Error records err as the last error without touching any counter.
func (s *Sink) Error(err error) {
	s.mu.Lock()
	s.recordLocked(err)
	s.mu.Unlock()
}

func (s *Sink) recordLocked(err error) {
	if err == nil {
		return
	}
	s.snap.LastError = err.Error()
	s.snap.LastErrorTime = s.clock.Now()
}

// FetchAttempt counts one fetch attempt; retry marks attempts after the first.
func (s *Sink) FetchAttempt(retry bool) {
	s.mu.Lock()
	s.snap.FetchAttempts++
	if retry {
		s.snap.FetchRetries++
	}
	s.mu.Unlock()
	s.fetchAttempts.Inc()
	if retry {
		s.fetchRetries.Inc()
	}
}

// CacheLookup counts a cache hit or miss for key.
func (s *Sink) CacheLookup(key string, hit bool) {
	s.mu.Lock()
	c := s.snap.Cache[key]
	result := resultMiss
	if hit {
		s.snap.CacheHits++
		c.Hits++
		result = resultHit
	} else {
		s.snap.CacheMisses++
		c.Misses++
	}
	s.snap.Cache[key] = c
	s.mu.Unlock()
	s.cacheLookups.WithLabelValues(key, result).Inc()
}

// Changed counts a detected change.
func (s *Sink) Changed(category string) {
	s.changes.WithLabelValues(category).Inc()
}

// CycleDuration observes how long one ingestion cycle took.
func (s *Sink) CycleDuration(d time.Duration) {
	s.cycleDuration.Observe(d.Seconds())
}

// Snapshot returns a copy of the counters.
func (s *Sink) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Cache = make(map[string]CacheCount, len(s.snap.Cache))
	for k, v := range s.snap.Cache {
		out.Cache[k] = v
	}
	out.Uptime = s.clock.Since(s.snap.StartTime).Truncate(time.Second).String()
	return out
}

// Handler serves the registry in the Prometheus text format.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
