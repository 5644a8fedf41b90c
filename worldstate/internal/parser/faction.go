package parser

import (
	"strings"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

type scope int

const (
	inFaction scope = iota
	inLocation
	inEither
)

type factionRule struct {
	needles []string
	scope   scope
	faction mission.Faction
}

// factionRules are evaluated top to bottom; the first match wins. Kuva
// missions are Grineer even when the faction cell says otherwise, so that
// rule comes first and also looks at the location.
var factionRules = []factionRule{
	{needles: []string{"kuva"}, scope: inEither, faction: mission.Grineer},
	{needles: []string{"grineer"}, scope: inFaction, faction: mission.Grineer},
	{needles: []string{"corpus", "amalgam"}, scope: inFaction, faction: mission.Corpus},
	{needles: []string{"infest"}, scope: inFaction, faction: mission.Infested},
	{needles: []string{"murmur"}, scope: inFaction, faction: mission.Murmur},
	{needles: []string{"void"}, scope: inLocation, faction: mission.Orokin},
	{needles: []string{"orokin", "corrupted"}, scope: inFaction, faction: mission.Orokin},
}

// DefaultFaction is assigned when no rule matches. Unlabelled fissures are
// overwhelmingly Corrupted Void missions, hence Orokin.
const DefaultFaction = mission.Orokin

// NormalizeFaction maps free-form faction text plus the mission location to
// a Faction. It never fails.
func NormalizeFaction(raw, location string) mission.Faction {
	f := strings.ToLower(raw)
	l := strings.ToLower(location)
	for _, r := range factionRules {
		for _, n := range r.needles {
			switch r.scope {
			case inFaction:
				if strings.Contains(f, n) {
					return r.faction
				}
			case inLocation:
				if strings.Contains(l, n) {
					return r.faction
				}
			case inEither:
				if strings.Contains(f, n) || strings.Contains(l, n) {
					return r.faction
				}
			}
		}
	}
	return DefaultFaction
}
