// Command indexfs builds, lists, edits, and inspects indexfs archives.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softgate/indexfs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "indexfs:", err)
		stop()
		os.Exit(1)
	}
}

// cli holds the state shared by every subcommand.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string
	level    string

	logger *slog.Logger
	opts   []indexfs.Option
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "indexfs",
		Short:         "Build, list, edit, and inspect indexfs archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&c.level, "compression", indexfs.CompressionBest.String(), "compression level: best, better, default, fastest")

	root.AddCommand(
		c.demoCmd(),
		c.lsCmd(),
		c.catCmd(),
		c.putCmd(),
		c.rmCmd(),
		c.inspectCmd(),
	)
	return root
}

// setup builds the logger and the core options from the persistent flags.
func (c *cli) setup() error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
	}
	level, err := indexfs.ParseCompressionLevel(c.level)
	if err != nil {
		return fmt.Errorf("invalid --compression: %w", err)
	}

	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: lvl}))
	c.opts = []indexfs.Option{
		indexfs.WithLogger(c.logger),
		indexfs.WithCompressionLevel(level),
	}
	return nil
}
