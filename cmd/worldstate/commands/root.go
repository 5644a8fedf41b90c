// Package commands implements the worldstate CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate"
)

// CLI holds the root command and its output streams.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	errOut  io.Writer

	configPath string
	logLevel   string
	logFormat  string
}

// New creates the command tree. Logs go to errOut, results to out.
func New(out, errOut io.Writer) *CLI {
	c := &CLI{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:           "worldstate",
		Short:         "Fissure and arbitration tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to worldstate.yaml (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "json", "log format: json or text")

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newOnceCmd())
	rootCmd.AddCommand(c.newParseCmd())
	rootCmd.AddCommand(c.newMCPCmd())

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) logger() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", c.logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.logFormat {
	case "json", "":
		return slog.New(slog.NewJSONHandler(c.errOut, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(c.errOut, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", c.logFormat)
}

// service loads the configuration and builds a Service.
func (c *CLI) service(opts ...worldstate.Option) (*worldstate.Service, *worldstate.Config, *slog.Logger, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := worldstate.LoadConfig(c.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := worldstate.New(cfg, append([]worldstate.Option{worldstate.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, cfg, logger, nil
}
