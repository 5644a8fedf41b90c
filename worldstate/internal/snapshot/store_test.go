package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func lith(loc string, expiry time.Time) mission.Fissure {
	return mission.Fissure{Relic: mission.Lith, MissionType: "Capture", Level: "10-15",
		Location: loc, Faction: mission.Grineer, Expiry: expiry}
}

func arbitration(node string) mission.Schedule {
	return mission.Schedule{Current: mission.Window{
		Tier: mission.Known(mission.TierA), MissionType: "Defense", Node: mission.Known(node),
		Location: node + ", Sedna", Faction: mission.Infested, Active: true,
	}}
}

func TestSetState_FirstInformativeFlags(t *testing.T) {
	s := New()
	changed := s.SetState(mission.State{
		Fissures:    []mission.Fissure{lith("Mantle, Earth", t0)},
		Arbitration: arbitration("Hydron"),
	}, t0)

	if !changed[mission.Fissures] || !changed[mission.Arbitration] {
		t.Fatalf("changed = %v, want Fissures and Arbitration", changed)
	}
	if changed[mission.SteelPathFissures] {
		t.Error("empty steel path list must not flag")
	}
	if got := s.LastScrape(); !got.Equal(t0) {
		t.Errorf("LastScrape = %v", got)
	}
}

func TestSetState_FreshnessGuard(t *testing.T) {
	// WHAT: an empty fissure list leaves Previous alone but still shows in Current.
	// WHY: a half-loaded page must not erase known-good data.
	s := New()
	good := []mission.Fissure{lith("Mantle, Earth", t0)}
	s.SetState(mission.State{Fissures: good, Arbitration: arbitration("Hydron")}, t0)
	s.ConsumeChanges()

	changed := s.SetState(mission.State{}, t0.Add(5*time.Second))
	if len(changed) != 0 {
		t.Fatalf("changed = %v, want none", changed)
	}
	prev := s.Previous()
	if len(prev.Fissures) != 1 || prev.Fissures[0].Location != "Mantle, Earth" {
		t.Errorf("Previous.Fissures = %v, want the earlier list", prev.Fissures)
	}
	if !prev.Arbitration.Known() {
		t.Error("Previous arbitration regressed to unknown")
	}
	if cur := s.Current(); len(cur.Fissures) != 0 || cur.Arbitration.Known() {
		t.Errorf("Current = %+v, want the empty scrape", cur)
	}
}

func TestSetState_ExpiryDriftIsNoChange(t *testing.T) {
	s := New()
	s.SetState(mission.State{Fissures: []mission.Fissure{lith("Mantle, Earth", t0)}}, t0)
	s.ConsumeChanges()

	changed := s.SetState(mission.State{Fissures: []mission.Fissure{lith("Mantle, Earth", t0.Add(time.Minute))}}, t0.Add(5*time.Second))
	if changed[mission.Fissures] {
		t.Error("expiry drift flagged as change")
	}
	if s.ConsumeChanges()[mission.Fissures] {
		t.Error("ConsumeChanges reports Fissures")
	}
}

func TestConsumeChanges_Coalesces(t *testing.T) {
	// WHAT: several changes between consumptions surface once.
	s := New()
	s.SetState(mission.State{Arbitration: arbitration("Hydron")}, t0)
	s.SetState(mission.State{Arbitration: arbitration("Casta")}, t0.Add(time.Hour))

	first := s.ConsumeChanges()
	if !first[mission.Arbitration] {
		t.Fatal("first consume missed the arbitration change")
	}
	if len(first) != len(mission.AllCategories()) {
		t.Errorf("consume returned %d categories", len(first))
	}
	second := s.ConsumeChanges()
	for cat, v := range second {
		if v {
			t.Errorf("%s still flagged after consume", cat)
		}
	}
}

func TestCurrent_IsIsolated(t *testing.T) {
	s := New()
	in := mission.State{Fissures: []mission.Fissure{lith("Mantle, Earth", t0)}}
	s.SetState(in, t0)
	in.Fissures[0].Location = "mutated"

	out := s.Current()
	out.Fissures[0].Location = "also mutated"

	if got := s.CurrentCategory(mission.Fissures).Fissures[0].Location; got != "Mantle, Earth" {
		t.Errorf("stored location = %q", got)
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	// WHAT: readers see either both categories of a write or neither.
	s := New()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			node := "Hydron"
			if i%2 == 1 {
				node = "Casta"
			}
			s.SetState(mission.State{
				Fissures:    []mission.Fissure{lith(node, t0)},
				Arbitration: arbitration(node),
			}, t0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			cur := s.Current()
			if len(cur.Fissures) == 0 {
				continue
			}
			if cur.Fissures[0].Location != cur.Arbitration.Current.Node.OrElse("") {
				t.Errorf("torn read: %q vs %v", cur.Fissures[0].Location, cur.Arbitration.Current.Node)
				return
			}
		}
	}()
	wg.Wait()
}
