package worldstate

import (
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/parser"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// ParseFissurePage parses a saved list page. locale selects the mission type
// names ("en" or "ru").
func ParseFissurePage(markup []byte, scrapeTime time.Time, locale string) (normal, steelPath []mission.Fissure) {
	return parser.New(parser.WithLocale(locale)).FissurePage(markup, scrapeTime)
}

// ParseArbitration parses a saved log page.
func ParseArbitration(markup []byte, scrapeTime time.Time, locale string) mission.Schedule {
	return parser.New(parser.WithLocale(locale)).Arbitration(markup, scrapeTime)
}
