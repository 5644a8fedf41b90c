package commands

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *CLI) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the scrape loop and serve the worldstate tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, _, err := c.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			srv := mcp.NewServer(&mcp.Implementation{Name: "worldstate", Version: "1.0.0"}, nil)
			svc.RegisterMCP(srv)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return svc.Run(ctx) })
			g.Go(func() error {
				// The client closing stdin ends the session and the loop with it.
				defer cancel()
				return srv.Run(ctx, &mcp.StdioTransport{})
			})
			return g.Wait()
		},
	}
}
