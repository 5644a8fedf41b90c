package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

var (
	// "(S tier)" or "(A tier, Eximus Stronghold)" at the end of an entry.
	tierBonusRe = regexp.MustCompile(`\((.+?)\s*tier(?:,\s*(.+?))?\)$`)
	clockPrefix = regexp.MustCompile(`^\d{2}:\d{2}\s*•\s*`)
	trailParen  = regexp.MustCompile(`\s*\(.+\)$`)
	// "Defense - Infested @ Hydron, Sedna"
	arbMissionRe = regexp.MustCompile(`(.+?)\s*-\s*(.+?)\s*@\s*(.+?),\s*(.+?)$`)
)

// ParseArbitration parses the arbitration log with the default parser.
func ParseArbitration(markup []byte, scrapeTime time.Time) mission.Schedule {
	return defaultParser.Arbitration(markup, scrapeTime)
}

// Arbitration reads every timestamped entry under #log and picks the
// current window relative to scrapeTime. When no window contains
// scrapeTime, the earliest future window becomes Current with Active false.
// A log without usable entries yields the zero Schedule.
func (p *Parser) Arbitration(markup []byte, scrapeTime time.Time) mission.Schedule {
	var windows []mission.Window
	document(markup).Find("div#log").First().Find("b[data-timestamp], span[data-timestamp]").
		Each(func(_ int, s *goquery.Selection) {
			if w, ok := p.arbitrationEntry(s); ok {
				windows = append(windows, w)
			}
		})
	return selectWindows(windows, scrapeTime)
}

func (p *Parser) arbitrationEntry(s *goquery.Selection) (mission.Window, bool) {
	ts, err := strconv.ParseInt(strings.TrimSpace(s.AttrOr("data-timestamp", "")), 10, 64)
	if err != nil {
		return mission.Window{}, false
	}
	raw := strings.TrimSpace(s.Text())

	tb := tierBonusRe.FindStringSubmatch(raw)
	if tb == nil {
		return mission.Window{}, false
	}
	tier, ok := mission.ParseArbitrationTier(tb[1])
	if !ok {
		return mission.Window{}, false
	}
	bonus := mission.Unknown[string]()
	if b := strings.TrimSpace(tb[2]); b != "" {
		bonus = mission.Known(b)
	}

	info := clockPrefix.ReplaceAllString(raw, "")
	info = strings.TrimSpace(trailParen.ReplaceAllString(info, ""))
	m := arbMissionRe.FindStringSubmatch(info)
	if m == nil {
		return mission.Window{}, false
	}
	node, planet := strings.TrimSpace(m[3]), strings.TrimSpace(m[4])
	location := node + ", " + planet

	start := time.Unix(ts, 0).UTC()
	return mission.Window{
		Tier:        mission.Known(tier),
		MissionType: p.types.Translate(m[1]),
		Node:        mission.Known(node),
		Location:    location,
		Faction:     NormalizeFaction(strings.TrimSpace(m[2]), location),
		Bonus:       bonus,
		Start:       start,
		End:         start.Add(mission.WindowDuration),
	}, true
}

func selectWindows(windows []mission.Window, now time.Time) mission.Schedule {
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

	var (
		sched    mission.Schedule
		current  *mission.Window
		upcoming []mission.Window
	)
	for i := range windows {
		w := windows[i]
		switch {
		case w.Contains(now):
			current = &windows[i]
		case w.Start.After(now):
			upcoming = append(upcoming, w)
		}
	}

	switch {
	case current != nil:
		sched.Current = *current
		sched.Current.Active = true
		sched.Current.Target = current.End
	case len(upcoming) > 0:
		sched.Current = upcoming[0]
		sched.Current.Target = upcoming[0].Start
		upcoming = upcoming[1:]
	}

	if len(upcoming) > mission.MaxUpcoming {
		upcoming = upcoming[:mission.MaxUpcoming]
	}
	if len(upcoming) > 0 {
		sched.Upcoming = make([]mission.Window, len(upcoming))
		for i, w := range upcoming {
			w.Target = w.Start
			sched.Upcoming[i] = w
		}
	}
	return sched
}

// EarliestOfTier returns the current window when it carries tier, else the
// first upcoming window of that tier.
func EarliestOfTier(s mission.Schedule, tier mission.ArbitrationTier) (mission.Window, bool) {
	if s.Known() && s.Current.Tier.OrElse("") == tier {
		return s.Current, true
	}
	for _, w := range s.Upcoming {
		if w.Tier.OrElse("") == tier {
			return w, true
		}
	}
	return mission.Window{}, false
}
