package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func (c *CLI) newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Scrape both sources once and print the status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, _, err := c.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.ForceRefresh(cmd.Context()); err != nil {
				return err
			}
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(svc.Status())
		},
	}
}
