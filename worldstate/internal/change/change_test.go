package change

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fissure(relic mission.RelicTier, typ, loc string, expiry time.Time) mission.Fissure {
	return mission.Fissure{
		Relic: relic, MissionType: typ, Level: "10-15", Location: loc,
		Faction: mission.Grineer, Expiry: expiry,
	}
}

func window(tier mission.ArbitrationTier, node string) mission.Window {
	return mission.Window{
		Tier: mission.Known(tier), MissionType: "Defense", Node: mission.Known(node),
		Location: node + ", Sedna", Faction: mission.Infested, Start: t0, End: t0.Add(time.Hour),
		Target: t0.Add(time.Hour), Active: true,
	}
}

func TestFissures_IgnoresOrderAndExpiry(t *testing.T) {
	// WHAT: a re-scrape with drifted countdowns and a shuffled table is no change.
	// WHY: countdowns move every second; notifying on them would spam users.
	a := []mission.Fissure{
		fissure(mission.Lith, "Capture", "Mantle, Earth", t0),
		fissure(mission.Axi, "Spy", "Cinxia, Ceres", t0),
	}
	b := []mission.Fissure{
		fissure(mission.Axi, "Spy", "Cinxia, Ceres", t0.Add(-5*time.Second)),
		fissure(mission.Lith, "Capture", "Mantle, Earth", t0.Add(time.Minute)),
	}
	assert.True(t, Fissures(a, b))
}

func TestFissures_Differences(t *testing.T) {
	base := []mission.Fissure{fissure(mission.Lith, "Capture", "Mantle, Earth", t0)}

	assert.False(t, Fissures(base, nil), "length mismatch")
	assert.False(t, Fissures(base, []mission.Fissure{fissure(mission.Meso, "Capture", "Mantle, Earth", t0)}))
	assert.True(t, Fissures(nil, []mission.Fissure{}))
}

func TestFissures_RepeatedKeys(t *testing.T) {
	// WHAT: same length and same key set is no change, even when a key repeats
	// a different number of times on each side.
	x := fissure(mission.Lith, "Capture", "Mantle, Earth", t0)
	y := fissure(mission.Neo, "Spy", "Cinxia, Ceres", t0)

	assert.True(t, Fissures([]mission.Fissure{x, x, y}, []mission.Fissure{x, y, y}))
	assert.Equal(t,
		Digest(mission.State{Fissures: []mission.Fissure{x, x, y}}),
		Digest(mission.State{Fissures: []mission.Fissure{x, y, y}}))

	assert.False(t, Fissures([]mission.Fissure{x, x}, []mission.Fissure{x, y}), "key sets differ")
	assert.False(t, Fissures([]mission.Fissure{x, y}, []mission.Fissure{x, y, y}), "length differs")
}

func TestArbitration(t *testing.T) {
	unknown := mission.Schedule{}
	known := mission.Schedule{Current: window(mission.TierA, "Hydron")}

	assert.True(t, Arbitration(unknown, unknown))
	assert.False(t, Arbitration(unknown, known))
	assert.False(t, Arbitration(known, unknown))
	assert.True(t, Arbitration(known, known.Clone()))

	moved := known.Clone()
	moved.Current.Target = t0.Add(2 * time.Hour)
	assert.True(t, Arbitration(known, moved), "times are not compared")

	other := known.Clone()
	other.Current.Node = mission.Known("Casta")
	assert.False(t, Arbitration(known, other))

	inactive := known.Clone()
	inactive.Current.Active = false
	assert.False(t, Arbitration(known, inactive))

	longer := known.Clone()
	longer.Upcoming = []mission.Window{window(mission.TierS, "Casta")}
	assert.False(t, Arbitration(known, longer))
}

func TestDigest(t *testing.T) {
	a := mission.State{
		Fissures: []mission.Fissure{
			fissure(mission.Lith, "Capture", "Mantle, Earth", t0),
			fissure(mission.Axi, "Spy", "Cinxia, Ceres", t0),
		},
		Arbitration: mission.Schedule{Current: window(mission.TierA, "Hydron")},
	}
	b := a.Clone()
	b.Fissures[0], b.Fissures[1] = b.Fissures[1], b.Fissures[0]
	b.Fissures[0].Expiry = t0.Add(time.Hour)

	assert.Equal(t, Digest(a), Digest(b))

	b.Arbitration.Current.Bonus = mission.Known("Eximus Stronghold")
	assert.NotEqual(t, Digest(a)[mission.Arbitration], Digest(b)[mission.Arbitration])
	assert.Equal(t, Digest(a)[mission.Fissures], Digest(b)[mission.Fissures])
}

func TestEqual(t *testing.T) {
	s := mission.State{SteelPathFissures: []mission.Fissure{fissure(mission.Neo, "Spy", "Cinxia, Ceres", t0)}}
	assert.False(t, Equal(mission.SteelPathFissures, mission.State{}, s))
	assert.True(t, Equal(mission.Fissures, mission.State{}, s))
	assert.True(t, Equal(mission.Arbitration, mission.State{}, s))
}
