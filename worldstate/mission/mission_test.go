package mission

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRelicTier(t *testing.T) {
	cases := map[string]RelicTier{
		"Lith":        Lith,
		" NEO ":       Neo,
		"Axi":         Axi,
		"Requiem":     Requiem,
		"Omnia":       Omnia,
		"Steel Path":  SteelPath,
		"steelpath":   SteelPath,
		"Meso Relics": Meso,
	}
	for in, want := range cases {
		got, ok := ParseRelicTier(in)
		if !ok || got != want {
			t.Errorf("ParseRelicTier(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "N/A", "Void Storm"} {
		if got, ok := ParseRelicTier(in); ok {
			t.Errorf("ParseRelicTier(%q) = %q; want unresolved", in, got)
		}
	}
}

func TestParseArbitrationTier(t *testing.T) {
	if got, ok := ParseArbitrationTier(" s "); !ok || got != TierS {
		t.Fatalf("got %q, %v", got, ok)
	}
	if _, ok := ParseArbitrationTier("E"); ok {
		t.Fatal("E is not a tier")
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"fissures":            Fissures,
		"SteelPath":           SteelPathFissures,
		"ArbitrationSchedule": Arbitration,
		"arby":                Arbitration,
	} {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Errorf("ParseCategory(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCategory("invasions"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestOptJSON(t *testing.T) {
	// WHAT: Unknown encodes as null and round-trips back to Unknown.
	// WHY: Collaborators must never see the "N/A" sentinel.
	w := Window{Node: Known("Casta"), Bonus: Unknown[string]()}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	var back Window
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Node != w.Node {
		t.Errorf("node: got %v, want %v", back.Node, w.Node)
	}
	if back.Bonus.IsKnown() {
		t.Errorf("bonus should stay unknown, got %v", back.Bonus)
	}
	if Unknown[string]().String() != "N/A" {
		t.Error("unknown should print as N/A")
	}
}

func TestFissureKeyIgnoresExpiry(t *testing.T) {
	a := Fissure{Relic: Lith, MissionType: "Capture", Level: "5-10", Location: "Mantle, Earth", Faction: Grineer, Expiry: time.Unix(100, 0)}
	b := a
	b.Expiry = time.Unix(900, 0)
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	b.Level = "10-15"
	if a.Key() == b.Key() {
		t.Fatal("level must be part of the key")
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := State{
		Fissures:    []Fissure{{Relic: Neo}},
		Arbitration: Schedule{Current: Window{Node: Known("Casta")}, Upcoming: []Window{{Node: Known("Hydron")}}},
	}
	c := s.Clone()
	c.Fissures[0].Relic = Axi
	c.Arbitration.Upcoming[0].Node = Known("Sechura")
	if s.Fissures[0].Relic != Neo {
		t.Error("clone shares fissure storage")
	}
	if n, _ := s.Arbitration.Upcoming[0].Node.Get(); n != "Hydron" {
		t.Error("clone shares upcoming storage")
	}
}

func TestWindowContains(t *testing.T) {
	start := time.Unix(1000, 0)
	w := Window{Start: start, End: start.Add(WindowDuration)}
	if !w.Contains(start) {
		t.Error("start is inside the window")
	}
	if w.Contains(w.End) {
		t.Error("end is outside the window")
	}
}
