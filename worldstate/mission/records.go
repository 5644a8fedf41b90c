package mission

import (
	"strings"
	"time"
)

// WindowDuration is the fixed length of every arbitration window. The log
// page only publishes start times, so the end is always derived.
const WindowDuration = time.Hour

// MaxUpcoming caps the number of future windows kept in a Schedule.
const MaxUpcoming = 20

// Fissure is one void fissure mission.
type Fissure struct {
	Relic       RelicTier `json:"relic"`
	MissionType string    `json:"type"`
	Level       string    `json:"level"`
	Location    string    `json:"location"`
	Faction     Faction   `json:"faction"`
	Expiry      time.Time `json:"expiry"`
	SteelPath   bool      `json:"steel_path,omitempty"`
}

// Key identifies a fissure independently of its expiry, so the same mission
// seen on two scrapes with a drifting countdown compares equal.
func (f Fissure) Key() string {
	return strings.Join([]string{
		string(f.Relic), f.MissionType, f.Location, f.Level, string(f.Faction),
	}, "|")
}

// Window is one arbitration slot.
type Window struct {
	Tier        Opt[ArbitrationTier] `json:"tier"`
	MissionType string               `json:"type"`
	Node        Opt[string]          `json:"node"`
	Location    string               `json:"location"`
	Faction     Faction              `json:"faction"`
	Bonus       Opt[string]          `json:"bonus"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	// Target is the instant a countdown should run to: End for the active
	// window, Start for a window that has not begun.
	Target time.Time `json:"target"`
	Active bool      `json:"active"`
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Schedule is the arbitration rotation as seen on one scrape.
type Schedule struct {
	Current  Window   `json:"current"`
	Upcoming []Window `json:"upcoming"`
}

// Known reports whether the schedule carries a real current node. The zero
// Schedule is unknown.
func (s Schedule) Known() bool { return s.Current.Node.IsKnown() }

// Clone returns a copy that shares no memory with s.
func (s Schedule) Clone() Schedule {
	out := Schedule{Current: s.Current}
	if s.Upcoming != nil {
		out.Upcoming = make([]Window, len(s.Upcoming))
		copy(out.Upcoming, s.Upcoming)
	}
	return out
}

// CloneFissures copies a fissure list.
func CloneFissures(in []Fissure) []Fissure {
	if in == nil {
		return nil
	}
	out := make([]Fissure, len(in))
	copy(out, in)
	return out
}
