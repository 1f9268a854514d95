package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tracekit/stacklook/internal/logutil"
)

type commonOptions struct {
	debug bool
}

func newRootCmd(opts *commonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stacklook",
		Short: "stacklook annotates scheduling events in trace reports with their kernel stacks",
		Long: `stacklook reads trace-cmd style reports, pairs sched_switch and
sched_waking events with the kernel stacks captured right after them,
and renders or prints the result.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logutil.ConfigureLogger()
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Sets log level to debug")
	cmd.AddCommand(newAnnotateCmd(opts))
	cmd.AddCommand(newStacksCmd(opts))

	return cmd
}

// Execute runs the root command. It is called by main.main() once.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := new(commonOptions)
	if err := newRootCmd(opts).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("stacklook failed")
		os.Exit(1)
	}
}
