// Command swarm runs leaderswarm: flocking simulations with rotating leaders.
//
// Usage
//
// The swarm command takes one optional argument:
//
//	swarm [config_file]
//
// It is the path to a TOML or YAML config file.
// If no config file is specified, a headless simulation
// with default parameters runs and reports progress in the log.
// When the config sets an output path, every frame is recorded
// to that HDF5 file instead.
//
// A recorded file can be inspected with:
//
//	swarm summary file.h5
//
// Config file
//
// The config file is written in TOML or YAML, chosen by its extension.
// Every key is optional and overrides the default parameters.
// Coefficient changes can be scheduled in time:
//
//	[[schedule]]
//	at = 30.0
//	gravity = false
//	repulsion = 5.0
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarm [config_file]",
		Short: "Run a leader/follower flocking simulation",
		Long: `swarm simulates a flock of birds in which a few leaders take turns
guiding the others through an arena full of obstacles.

The first argument is optional and is the path to a TOML or YAML config file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := DefaultConf()
			if len(args) == 1 {
				var err error
				if conf, err = ParseConfig(args[0]); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("output") {
				conf.Output, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("log-level") {
				conf.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			log, err := newLogger(conf.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return run(cmd.Context(), conf, log, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringP("output", "o", "", "HDF5 output file, overrides the config")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")

	cmd.AddCommand(newSummaryCmd())
	return cmd
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// newLogger returns a text logger writing to w at the named level.
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
