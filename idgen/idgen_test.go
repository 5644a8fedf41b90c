package idgen

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if len(id) != 36 || len(strings.Split(id, "-")) != 5 {
		t.Fatalf("UUIDv7: malformed %q", id)
	}
}

func TestPrefixed(t *testing.T) {
	id := Cycle()
	if !strings.HasPrefix(id, CyclePrefix) {
		t.Fatalf("Cycle: missing prefix in %q", id)
	}
	if _, err := Parse(id); err != nil {
		t.Fatalf("Parse(%q): %v", id, err)
	}
	if !strings.HasPrefix(Event(), EventPrefix) {
		t.Fatal("Event: missing prefix")
	}
}

func TestCycle_Sortable(t *testing.T) {
	// WHAT: later cycle IDs sort after earlier ones.
	// WHY: log lines can be ordered by cycle without a timestamp.
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = Cycle()
		time.Sleep(time.Millisecond)
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatal("cycle IDs are not time-ordered")
	}
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	got, err := Time(Cycle())
	if err != nil {
		t.Fatal(err)
	}
	if got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Errorf("Time = %v, want close to now", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, id := range []string{"", "cyc_", "cyc_not-a-uuid", "hello"} {
		if _, err := Parse(id); err == nil {
			t.Errorf("Parse(%q): expected error", id)
		}
	}
	if _, err := Time("cyc_6ba7b810-9dad-11d1-80b4-00c04fd430c8"); err == nil {
		t.Error("Time on a v1 UUID should fail")
	}
}
