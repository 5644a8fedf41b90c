// Package snapshot keeps the latest and the last informative value of every
// category and raises change flags when the informative value moves.
package snapshot

import (
	"sync"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/change"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// Store is safe for concurrent use. Every method observes either the state
// before or after a SetState call, never a mix.
type Store struct {
	mu         sync.RWMutex
	current    mission.State
	previous   mission.State
	flags      map[mission.Category]bool
	lastScrape time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{flags: make(map[mission.Category]bool)}
}

// Informative reports whether cat carries usable data in s: a non-empty
// fissure list, or an arbitration schedule with a known node.
func Informative(cat mission.Category, s mission.State) bool {
	if cat == mission.Arbitration {
		return s.Arbitration.Known()
	}
	return len(s.FissuresFor(cat)) > 0
}

// SetState records a scrape. Current takes next verbatim. For each category
// where next is informative and differs from Previous, Previous is replaced
// and the change flag raised. Uninformative values never touch Previous.
// The returned map lists the categories flagged by this call.
func (s *Store) SetState(next mission.State, scrapeTime time.Time) map[mission.Category]bool {
	next = next.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = next
	s.lastScrape = scrapeTime

	changed := make(map[mission.Category]bool)
	for _, cat := range mission.AllCategories() {
		if !Informative(cat, next) {
			continue
		}
		if change.Equal(cat, s.previous, next) {
			continue
		}
		s.previous.CopyFrom(cat, next)
		s.flags[cat] = true
		changed[cat] = true
	}
	return changed
}

// Current returns a copy of the latest scrape.
func (s *Store) Current() mission.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// CurrentCategory returns the latest scrape of one category.
func (s *Store) CurrentCategory(cat mission.Category) mission.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Entry(cat, s.lastScrape)
}

// Previous returns a copy of the last informative values.
func (s *Store) Previous() mission.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous.Clone()
}

// ConsumeChanges returns the raised flags and clears them. Every category
// is present in the result.
func (s *Store) ConsumeChanges() map[mission.Category]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[mission.Category]bool, len(mission.AllCategories()))
	for _, cat := range mission.AllCategories() {
		out[cat] = s.flags[cat]
	}
	clear(s.flags)
	return out
}

// LastScrape is the scrape time of the latest SetState, zero before the
// first one.
func (s *Store) LastScrape() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScrape
}
