package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

func testEvent() Event {
	return Event{
		ID:       "cyc_1",
		Category: mission.Fissures,
		Entry:    mission.Entry{Category: mission.Fissures},
		At:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStdout_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	if err := NewStdout(&buf).Notify(context.Background(), testEvent()); err != nil {
		t.Fatal(err)
	}
	var got Event
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if got.Category != mission.Fissures || got.ID != "cyc_1" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	// WHAT: a 5xx is retried and a later 2xx ends the loop.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := w.Notify(context.Background(), testEvent()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestWebhook_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookRetries(2), WithWebhookBackoff(time.Millisecond))
	if err := w.Notify(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRouter_FanOutSurvivesFailure(t *testing.T) {
	// WHAT: one broken notifier does not starve the rest.
	var delivered int
	bad := NewCallback(func(context.Context, Event) error { return errors.New("down") })
	good := NewCallback(func(context.Context, Event) error { delivered++; return nil })

	r := NewRouter(nil, bad, good)
	err := r.Notify(context.Background(), testEvent())
	if err == nil {
		t.Error("expected joined error")
	}
	if delivered != 1 {
		t.Errorf("delivered = %d", delivered)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
