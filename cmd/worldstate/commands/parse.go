package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate"
)

func (c *CLI) newParseCmd() *cobra.Command {
	var (
		kind   string
		locale string
		at     string
	)
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a saved source page and print the records as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			markup, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("parse: read: %w", err)
			}
			scrapeTime := time.Now().UTC()
			if at != "" {
				if scrapeTime, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parse: --at: %w", err)
				}
			}

			var out any
			switch kind {
			case "fissures":
				normal, sp := worldstate.ParseFissurePage(markup, scrapeTime, locale)
				out = map[string]any{"fissures": normal, "steel_path_fissures": sp}
			case "arbitration":
				out = worldstate.ParseArbitration(markup, scrapeTime, locale)
			default:
				return fmt.Errorf("parse: unknown kind %q (want fissures or arbitration)", kind)
			}

			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "fissures", "page kind: fissures or arbitration")
	cmd.Flags().StringVar(&locale, "locale", "en", "mission type names: en or ru")
	cmd.Flags().StringVar(&at, "at", "", "scrape time as RFC 3339 (default now)")
	return cmd
}
