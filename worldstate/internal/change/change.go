// Package change decides whether two observations of a category differ in
// a way that should reach users.
package change

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// Fissures reports whether old and new describe the same set of missions.
// Lists of different length always differ; otherwise the key sets are
// compared, so order, expiry and repeats of a key are ignored.
func Fissures(old, new []mission.Fissure) bool {
	if len(old) != len(new) {
		return false
	}
	a, b := keySet(old), keySet(new)
	if len(a) != len(b) {
		return false
	}
	for h := range a {
		if _, ok := b[h]; !ok {
			return false
		}
	}
	return true
}

func keySet(list []mission.Fissure) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(list))
	for _, f := range list {
		set[xxhash.Sum64String(f.Key())] = struct{}{}
	}
	return set
}

// Arbitration reports whether two schedules are equivalent. Two unknown
// schedules are equal; a known and an unknown one are not. Otherwise the
// current windows are compared field by field, minus the times, together
// with the number of upcoming windows.
func Arbitration(old, new mission.Schedule) bool {
	switch {
	case !old.Known() && !new.Known():
		return true
	case old.Known() != new.Known():
		return false
	}
	a, b := old.Current, new.Current
	return a.Tier == b.Tier &&
		a.MissionType == b.MissionType &&
		a.Location == b.Location &&
		a.Node == b.Node &&
		a.Faction == b.Faction &&
		a.Bonus == b.Bonus &&
		a.Active == b.Active &&
		len(old.Upcoming) == len(new.Upcoming)
}

// Equal applies the rule for cat to the matching fields of two states.
func Equal(cat mission.Category, old, new mission.State) bool {
	if cat == mission.Arbitration {
		return Arbitration(old.Arbitration, new.Arbitration)
	}
	return Fissures(old.FissuresFor(cat), new.FissuresFor(cat))
}

// Digest fingerprints every category of s with the same notion of identity
// the comparisons use, so equal states have equal digests.
func Digest(s mission.State) map[mission.Category]string {
	return map[mission.Category]string{
		mission.Fissures:          fissureDigest(s.Fissures),
		mission.SteelPathFissures: fissureDigest(s.SteelPathFissures),
		mission.Arbitration:       scheduleDigest(s.Arbitration),
	}
}

func fissureDigest(list []mission.Fissure) string {
	keys := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, f := range list {
		if k := f.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	h := xxhash.New()
	_, _ = h.WriteString(fmt.Sprint(len(list)))
	_, _ = h.Write([]byte{0})
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func scheduleDigest(s mission.Schedule) string {
	if !s.Known() {
		return fmt.Sprintf("%016x", xxhash.Sum64(nil))
	}
	c := s.Current
	h := xxhash.New()
	for _, part := range []string{
		c.Tier.String(), c.MissionType, c.Location, c.Node.String(),
		string(c.Faction), c.Bonus.String(), fmt.Sprint(c.Active), fmt.Sprint(len(s.Upcoming)),
	} {
		_, _ = h.WriteString(part)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
