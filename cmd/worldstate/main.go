// Command worldstate scrapes fissures and the arbitration schedule, keeps
// the latest snapshot and serves it over HTTP and MCP.
//
// Usage:
//
//	worldstate run --config worldstate.yaml   # loops + HTTP API
//	worldstate once                           # one scrape, print status
//	worldstate parse --kind fissures page.html
//	worldstate mcp                            # MCP tools on stdio
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ffhgterh111-hub/LFGWarframeMain/cmd/worldstate/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.New(os.Stdout, os.Stderr).Execute(ctx); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
