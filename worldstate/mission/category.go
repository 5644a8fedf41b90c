// Package mission defines the typed worldstate model: fissures, arbitration
// windows and the per-category state the pipeline keeps.
package mission

import (
	"fmt"
	"strings"
)

// Category identifies one independently tracked slice of the worldstate.
type Category string

const (
	Fissures          Category = "Fissures"
	SteelPathFissures Category = "SteelPathFissures"
	Arbitration       Category = "ArbitrationSchedule"
)

// AllCategories returns every category in a fixed order.
func AllCategories() []Category {
	return []Category{Arbitration, Fissures, SteelPathFissures}
}

// ParseCategory accepts the canonical names and the short aliases used on
// the command line and in URLs ("fissures", "steelpath", "arbitration").
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fissures", "fissure", "normal":
		return Fissures, nil
	case "steelpathfissures", "steelpath", "steel_path", "sp":
		return SteelPathFissures, nil
	case "arbitrationschedule", "arbitration", "arby", "arbys":
		return Arbitration, nil
	}
	return "", fmt.Errorf("mission: unknown category %q", s)
}

// RelicTier is the reward category of a fissure.
type RelicTier string

const (
	Lith      RelicTier = "Lith"
	Meso      RelicTier = "Meso"
	Neo       RelicTier = "Neo"
	Axi       RelicTier = "Axi"
	Requiem   RelicTier = "Requiem"
	Omnia     RelicTier = "Omnia"
	SteelPath RelicTier = "SteelPath"
)

var relicTiers = []RelicTier{SteelPath, Requiem, Omnia, Lith, Meso, Neo, Axi}

// ParseRelicTier resolves a table header such as "Lith", "NEO" or
// "Steel Path" to a tier. Unrecognised text is not a tier.
func ParseRelicTier(s string) (RelicTier, bool) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if norm == "" {
		return "", false
	}
	for _, t := range relicTiers {
		if strings.HasPrefix(norm, strings.ToLower(string(t))) {
			return t, true
		}
	}
	return "", false
}

// Faction is the normalised enemy faction of a mission.
type Faction string

const (
	Grineer  Faction = "Grineer"
	Corpus   Faction = "Corpus"
	Infested Faction = "Infested"
	Murmur   Faction = "Murmur"
	Orokin   Faction = "Orokin"
)

// ArbitrationTier grades an arbitration node, S best and F worst.
type ArbitrationTier string

const (
	TierS ArbitrationTier = "S"
	TierA ArbitrationTier = "A"
	TierB ArbitrationTier = "B"
	TierC ArbitrationTier = "C"
	TierD ArbitrationTier = "D"
	TierF ArbitrationTier = "F"
)

// ParseArbitrationTier accepts a tier letter in any case.
func ParseArbitrationTier(s string) (ArbitrationTier, bool) {
	switch t := ArbitrationTier(strings.ToUpper(strings.TrimSpace(s))); t {
	case TierS, TierA, TierB, TierC, TierD, TierF:
		return t, true
	}
	return "", false
}
