// Package oauthcli wires the oauthcore package into a small cobra-based
// demo CLI, the same command-tree shape as the teacher's
// internal/cli/root.go and internal/commands/auth.go.
package oauthcli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

var (
	verbose bool
	trace   bool
)

// Execute builds and runs the root command.
func Execute() error {
	root := newRootCommand()
	return root.Execute()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "oauthcore-demo",
		Short:         "Exercise the oauthcore token lifecycle from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "print a redacted trace of every token-endpoint exchange")

	root.AddCommand(
		newLoginCommand(),
		newTokenCommand(),
		newRefreshCommand(),
		newClearCommand(),
	)
	return root
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newManager builds an oauthcore.Manager, attaching a TraceWriter to
// stderr when --trace is set and the core's own cache-decision logger
// when --verbose is set.
func newManager() *oauthcore.Manager {
	opts := []oauthcore.ManagerOption{}
	if trace {
		opts = append(opts, oauthcore.WithTraceWriter(oauthcore.NewTraceWriter(os.Stderr)))
	}
	if verbose {
		opts = append(opts, oauthcore.WithLogger(slog.Default()))
	}
	return oauthcore.NewManager(opts...)
}
