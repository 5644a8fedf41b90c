package stats

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSink_Counters(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)

	s.ScrapeSucceeded()
	clock.Advance(time.Minute)
	s.SourceFailed("fissures", errors.New("fetcher: timeout"))
	s.ScrapeFailed(errors.New("worldstate: cycle: no data"))
	s.FetchAttempt(false)
	s.FetchAttempt(true)
	s.CacheLookup("Fissures", true)
	s.CacheLookup("Fissures", false)
	s.CacheLookup("ArbitrationSchedule", false)

	snap := s.Snapshot()
	if snap.TotalScrapes != 2 || snap.SuccessfulScrapes != 1 || snap.FailedScrapes != 1 {
		t.Errorf("scrapes = %d/%d/%d", snap.TotalScrapes, snap.SuccessfulScrapes, snap.FailedScrapes)
	}
	if snap.FissureErrors != 1 || snap.ArbitrationErrors != 0 {
		t.Errorf("source errors = %d/%d", snap.FissureErrors, snap.ArbitrationErrors)
	}
	if snap.FetchAttempts != 2 || snap.FetchRetries != 1 {
		t.Errorf("fetch = %d/%d", snap.FetchAttempts, snap.FetchRetries)
	}
	if snap.CacheHits != 1 || snap.CacheMisses != 2 {
		t.Errorf("cache = %d/%d", snap.CacheHits, snap.CacheMisses)
	}
	if got := snap.Cache["Fissures"]; got != (CacheCount{Hits: 1, Misses: 1}) {
		t.Errorf("Fissures cache = %+v", got)
	}
	if snap.LastError != "worldstate: cycle: no data" {
		t.Errorf("LastError = %q", snap.LastError)
	}
	if !snap.LastErrorTime.Equal(clock.Now()) {
		t.Errorf("LastErrorTime = %v", snap.LastErrorTime)
	}
	if snap.Uptime != "1m0s" {
		t.Errorf("Uptime = %q", snap.Uptime)
	}

	if got := testutil.ToFloat64(s.scrapes.WithLabelValues(resultFailure)); got != 1 {
		t.Errorf("scrapes_total{failure} = %v", got)
	}
	if got := testutil.ToFloat64(s.cacheLookups.WithLabelValues("Fissures", resultHit)); got != 1 {
		t.Errorf("cache_lookups_total{Fissures,hit} = %v", got)
	}
}

func TestSink_SnapshotIsCopy(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	s.CacheLookup("Fissures", true)
	snap := s.Snapshot()
	snap.Cache["Fissures"] = CacheCount{}
	if s.Snapshot().Cache["Fissures"].Hits != 1 {
		t.Error("snapshot shares its cache map")
	}
}

func TestSink_Handler(t *testing.T) {
	s := New(nil)
	s.ScrapeSucceeded()
	s.Changed("Fissures")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`worldstate_scrapes_total{result="success"} 1`,
		`worldstate_changes_total{category="Fissures"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
