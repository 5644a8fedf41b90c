package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

const unknownMission = "Unknown Mission"

const steelPathMarker = "(Steel Path)"

// missionPrefix is the abbreviation some localised pages put before the
// mission type ("М. Оборона").
const missionPrefix = "М."

var (
	// "(10-14) - Grineer @ Mantle, Earth"
	levelFactionLocRe = regexp.MustCompile(`\(([^)]+)\)\s*-\s*([^@]+)(?:@\s*(.+))?`)
	levelOnlyRe       = regexp.MustCompile(`\(([^)]+)\)`)
)

// ParseFissures parses fissure rows with the default parser.
func ParseFissures(markup []byte, scrapeTime time.Time, elite bool) []mission.Fissure {
	return defaultParser.Fissures(markup, scrapeTime, elite)
}

// ParseFissurePage splits the list page into its two tables with the
// default parser.
func ParseFissurePage(markup []byte, scrapeTime time.Time) (normal, steelPath []mission.Fissure) {
	return defaultParser.FissurePage(markup, scrapeTime)
}

// Fissures scans every table row in markup top to bottom. A row carrying a
// non-empty header cell sets the current relic tier, which sticks until the
// next header. Data rows seen while no tier is set are dropped, as are rows
// under a header that does not name a known tier.
func (p *Parser) Fissures(markup []byte, scrapeTime time.Time, elite bool) []mission.Fissure {
	return p.fissureRows(document(markup).Selection, scrapeTime, elite)
}

// FissurePage locates the normal and Steel Path tables of the list page and
// parses each. A missing table yields a nil list for that category.
func (p *Parser) FissurePage(markup []byte, scrapeTime time.Time) (normal, steelPath []mission.Fissure) {
	doc := document(markup)
	normalTbl, spTbl := findFissureTables(doc)
	if normalTbl != nil {
		normal = p.fissureRows(normalTbl, scrapeTime, false)
	}
	if spTbl != nil {
		steelPath = p.fissureRows(spTbl, scrapeTime, true)
	}
	return normal, steelPath
}

func findFissureTables(doc *goquery.Document) (normal, steelPath *goquery.Selection) {
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		h := outerLower(tbl)
		allTiers := strings.Contains(h, "lith") && strings.Contains(h, "meso") &&
			strings.Contains(h, "neo") && strings.Contains(h, "axi")
		isSP := strings.Contains(h, "steel path") || strings.Contains(h, "sp-fissures")
		if (allTiers || strings.Contains(h, "fissures-table")) && !isSP {
			normal = tbl
			return false
		}
		return true
	})
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		h := outerLower(tbl)
		if strings.Contains(h, "sp-fissures") || strings.Contains(h, "steel path") {
			steelPath = tbl
			return false
		}
		return true
	})
	if normal == nil {
		if s := doc.Find("table#fissures-table").First(); s.Length() > 0 {
			normal = s
		}
	}
	if steelPath == nil {
		if s := doc.Find("table#sp-fissures-table").First(); s.Length() > 0 {
			steelPath = s
		}
	}
	return normal, steelPath
}

func outerLower(s *goquery.Selection) string {
	h, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(h)
}

func (p *Parser) fissureRows(root *goquery.Selection, scrapeTime time.Time, elite bool) []mission.Fissure {
	var (
		out     []mission.Fissure
		tier    mission.RelicTier
		hasTier bool
	)
	root.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if th := row.Find("th").First(); th.Length() > 0 {
			if header := text(th); header != "" {
				tier, hasTier = mission.ParseRelicTier(header)
			}
		}
		td := row.Find("td").First()
		if td.Length() == 0 || !hasTier {
			return
		}
		if f, ok := p.fissureCell(td, tier, scrapeTime, elite); ok {
			out = append(out, f)
		}
	})
	return out
}

func (p *Parser) fissureCell(td *goquery.Selection, tier mission.RelicTier, scrapeTime time.Time, elite bool) (mission.Fissure, bool) {
	typeRaw := text(td.Find("b").First())
	if rest, ok := strings.CutPrefix(typeRaw, missionPrefix); ok {
		typeRaw = strings.TrimSpace(rest)
	}
	remaining := ParseDuration(text(td.Find("span.badge").First()))

	var level, factionRaw, location string
	if span := locationSpan(td); span != nil {
		level, factionRaw, location = splitLocation(text(span))
	}
	if typeRaw == "" && location == "" {
		return mission.Fissure{}, false
	}
	if typeRaw == "" {
		typeRaw = unknownMission
	}

	f := mission.Fissure{
		Relic:       tier,
		MissionType: p.types.Translate(typeRaw),
		Level:       level,
		Location:    location,
		Faction:     NormalizeFaction(factionRaw, location),
		Expiry:      scrapeTime.Add(remaining),
	}
	// Omnia fissures are always Grineer, whatever the faction cell says.
	if tier == mission.Omnia {
		f.Faction = mission.Grineer
	}
	if elite || strings.Contains(location, "Steel Path") || strings.Contains(typeRaw, "Steel Path") {
		f.SteelPath = true
		f.MissionType = strings.TrimSpace(strings.ReplaceAll(f.MissionType, steelPathMarker, ""))
		f.Location = strings.TrimSpace(strings.ReplaceAll(f.Location, " "+steelPathMarker, ""))
	}
	return f, true
}

// locationSpan returns the first span without a class or countdown
// attribute; on the list page that span carries "(level) - faction @ node".
func locationSpan(td *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	td.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		cls, _ := s.Attr("class")
		_, hasExpiry := s.Attr("data-expiry")
		if strings.TrimSpace(cls) == "" && !hasExpiry {
			found = s
			return false
		}
		return true
	})
	return found
}

func splitLocation(raw string) (level, faction, location string) {
	if m := levelFactionLocRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
	}
	m := levelOnlyRe.FindStringSubmatch(raw)
	if m == nil {
		return "", "", ""
	}
	level = strings.TrimSpace(m[1])
	rest := strings.TrimSpace(strings.Replace(raw, m[0], "", 1))
	if before, after, ok := strings.Cut(rest, "@"); ok {
		return level, strings.TrimSpace(strings.ReplaceAll(before, "-", "")), strings.TrimSpace(after)
	}
	return level, "", rest
}
