package mission

import "time"

// State holds one value per category.
type State struct {
	Fissures          []Fissure `json:"fissures"`
	SteelPathFissures []Fissure `json:"steel_path_fissures"`
	Arbitration       Schedule  `json:"arbitration"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Fissures:          CloneFissures(s.Fissures),
		SteelPathFissures: CloneFissures(s.SteelPathFissures),
		Arbitration:       s.Arbitration.Clone(),
	}
}

// FissuresFor returns the fissure list of a fissure category, nil otherwise.
func (s State) FissuresFor(cat Category) []Fissure {
	switch cat {
	case Fissures:
		return s.Fissures
	case SteelPathFissures:
		return s.SteelPathFissures
	}
	return nil
}

// CopyFrom overwrites one category of s with a deep copy of src's value.
func (s *State) CopyFrom(cat Category, src State) {
	switch cat {
	case Fissures:
		s.Fissures = CloneFissures(src.Fissures)
	case SteelPathFissures:
		s.SteelPathFissures = CloneFissures(src.SteelPathFissures)
	case Arbitration:
		s.Arbitration = src.Arbitration.Clone()
	}
}

// Entry is the value of a single category as handed to display code.
type Entry struct {
	Category  Category  `json:"category"`
	Fissures  []Fissure `json:"fissures,omitempty"`
	Schedule  *Schedule `json:"schedule,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Entry extracts one category from s.
func (s State) Entry(cat Category, scrapedAt time.Time) Entry {
	e := Entry{Category: cat, ScrapedAt: scrapedAt}
	if cat == Arbitration {
		sched := s.Arbitration.Clone()
		e.Schedule = &sched
		return e
	}
	e.Fissures = CloneFissures(s.FissuresFor(cat))
	return e
}
