package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

const settle = 50 * time.Millisecond

func expectCycle(t *testing.T, ch <-chan int, what string) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: no cycle", what)
		return 0
	}
}

func expectNoCycle(t *testing.T, ch <-chan int, what string) {
	t.Helper()
	select {
	case n := <-ch:
		t.Fatalf("%s: unexpected cycle %d", what, n)
	case <-time.After(settle):
	}
}

func startIngestion(t *testing.T, clock clockwork.FakeClock, cycle CycleFunc) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(cycle, nil, nil, Config{Clock: clock})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.RunIngestion(ctx); err != nil {
			t.Errorf("RunIngestion: %v", err)
		}
	}()
	t.Cleanup(func() { cancel(); <-done })
	return cancel
}

func TestIngestion_RunsImmediatelyThenEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cycles := make(chan int, 10)
	var n int
	startIngestion(t, clock, func(context.Context) error {
		n++
		cycles <- n
		return nil
	})

	expectCycle(t, cycles, "initial")
	clock.BlockUntil(1)
	clock.Advance(4 * time.Second)
	expectNoCycle(t, cycles, "before interval")
	clock.Advance(time.Second)
	if got := expectCycle(t, cycles, "after interval"); got != 2 {
		t.Errorf("cycle = %d, want 2", got)
	}
}

func TestIngestion_SubtractsElapsedWithFloor(t *testing.T) {
	// WHAT: a 4s cycle leaves 1s of the 5s period, floored to 3s.
	clock := clockwork.NewFakeClock()
	cycles := make(chan int, 10)
	var n int
	startIngestion(t, clock, func(context.Context) error {
		n++
		if n == 1 {
			clock.Advance(4 * time.Second)
		}
		cycles <- n
		return nil
	})

	expectCycle(t, cycles, "initial")
	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	expectNoCycle(t, cycles, "inside floor")
	clock.Advance(time.Second)
	expectCycle(t, cycles, "at floor")
}

func TestIngestion_ErrorAndPanicBackOff(t *testing.T) {
	// WHAT: failing and panicking cycles sleep ErrorBackoff and the loop survives.
	// WHY: a broken page must not stop ingestion for good.
	clock := clockwork.NewFakeClock()
	cycles := make(chan int, 10)
	var n int
	startIngestion(t, clock, func(context.Context) error {
		n++
		cycles <- n
		switch n {
		case 1:
			return errors.New("both sources down")
		case 2:
			panic("parser exploded")
		}
		return nil
	})

	expectCycle(t, cycles, "initial")
	clock.BlockUntil(1)
	clock.Advance(9 * time.Second)
	expectNoCycle(t, cycles, "inside backoff")
	clock.Advance(time.Second)
	expectCycle(t, cycles, "after error backoff")

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	expectNoCycle(t, cycles, "inside panic backoff")
	clock.Advance(5 * time.Second)
	if got := expectCycle(t, cycles, "after panic backoff"); got != 3 {
		t.Errorf("cycle = %d, want 3", got)
	}
}

func TestIngestion_StopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cycles := make(chan int, 10)
	cancel := startIngestion(t, clock, func(context.Context) error {
		cycles <- 1
		return nil
	})
	expectCycle(t, cycles, "initial")
	clock.BlockUntil(1)
	cancel()
}

type fakeChanges struct {
	mu       sync.Mutex
	flags    map[mission.Category]bool
	last     time.Time
	consumed int
}

func (f *fakeChanges) ConsumeChanges() map[mission.Category]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumed++
	out := f.flags
	f.flags = map[mission.Category]bool{}
	return out
}

func (f *fakeChanges) LastScrape() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeChanges) set(flags map[mission.Category]bool, last time.Time) {
	f.mu.Lock()
	f.flags, f.last = flags, last
	f.mu.Unlock()
}

func TestNotifications_OnePerFlaggedCategory(t *testing.T) {
	clock := clockwork.NewFakeClock()
	changes := &fakeChanges{flags: map[mission.Category]bool{mission.Fissures: true}}
	notified := make(chan mission.Category, 10)

	s := New(nil, changes, func(_ context.Context, cat mission.Category) error {
		notified <- cat
		return nil
	}, Config{Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { defer close(done); _ = s.RunNotifications(ctx) }()
	defer func() { cancel(); <-done }()

	// No scrape yet: the tick must not drain anything.
	clock.BlockUntil(1)
	clock.Advance(15 * time.Second)
	select {
	case cat := <-notified:
		t.Fatalf("notified %s before first scrape", cat)
	case <-time.After(settle):
	}

	changes.set(map[mission.Category]bool{
		mission.Fissures:    true,
		mission.Arbitration: true,
	}, clock.Now())
	clock.Advance(15 * time.Second)

	got := map[mission.Category]int{}
	for i := 0; i < 2; i++ {
		select {
		case cat := <-notified:
			got[cat]++
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d notifications", i)
		}
	}
	select {
	case cat := <-notified:
		t.Fatalf("extra notification for %s", cat)
	case <-time.After(settle):
	}
	if got[mission.Fissures] != 1 || got[mission.Arbitration] != 1 {
		t.Errorf("notifications = %v", got)
	}
}

func TestRun_StopsBothLoops(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(func(context.Context) error { return nil }, &fakeChanges{}, func(context.Context, mission.Category) error { return nil }, Config{Clock: clock})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	clock.BlockUntil(2)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
