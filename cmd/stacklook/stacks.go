package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tracekit/stacklook/internal/timeutil"
	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/detail"
	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/report"
	"github.com/tracekit/stacklook/pkg/stream"
)

type stacksOptions struct {
	*commonOptions

	task    string
	pid     int
	cpu     int
	event   string
	maxHops int
}

func newStacksCmd(opts *commonOptions) *cobra.Command {
	o := &stacksOptions{commonOptions: opts}

	cmd := &cobra.Command{
		Use:   "stacks <report>...",
		Short: "stacks prints the kernel stacks captured for scheduling events",
		Args:  cobra.MinimumNArgs(1),
		RunE:  o.run,
	}
	cmd.Flags().StringVar(&o.task, "task", "", "Only captures of this task")
	cmd.Flags().IntVar(&o.pid, "pid", -1, "Only captures of this task id")
	cmd.Flags().IntVar(&o.cpu, "cpu", -1, "Only captures recorded on this CPU")
	cmd.Flags().StringVar(&o.event, "event", "", "Only captures behind this event type")
	cmd.Flags().IntVar(&o.maxHops, "max-hops", 0, "Entries searched past an owner for its capture, 0 for no cap")

	return cmd
}

func (o *stacksOptions) run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	for _, path := range args {
		if err := o.print(cmd.OutOrStdout(), path, cfg); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func (o *stacksOptions) print(w io.Writer, path string, cfg *config.Config) error {
	trace, err := report.Load(path)
	if err != nil {
		return err
	}
	sess, err := plugin.Attach(trace, cfg, plugin.WithMaxHops(o.maxHops))
	if err != nil {
		if errors.Is(err, plugin.ErrEventUnavailable) {
			log.Warn().Str("report", trace.Source()).Msg("no stack captures recorded")
			return nil
		}
		return err
	}
	defer sess.Detach()

	for _, pair := range sess.Pairs() {
		if !o.want(pair.Owner, trace) {
			continue
		}
		name, _ := sess.Events().OwnerName(pair.Owner.EventID())
		payload := ""
		if pair.Stack != nil {
			payload = pair.Stack.Payload()
		}
		v := detail.New(pair.Owner.TaskName(), name, pair.Owner.Payload(), payload, pair.Stack != nil)
		fmt.Fprintf(w, "%s  cpu=%d pid=%d %s\n", timeutil.FormatTrace(pair.Owner.Timestamp()),
			pair.Owner.CPU(), stream.ResolveTaskID(pair.Owner), name)
		fmt.Fprintln(w, v.Title)
		fmt.Fprintln(w, v.Info)
		fmt.Fprintln(w, v.Stack)
		fmt.Fprintln(w)
	}
	return nil
}

func (o *stacksOptions) want(owner stream.Entry, trace *report.Trace) bool {
	if o.task != "" && owner.TaskName() != o.task {
		return false
	}
	if o.pid >= 0 && stream.ResolveTaskID(owner) != o.pid {
		return false
	}
	if o.cpu >= 0 && owner.CPU() != o.cpu {
		return false
	}
	if o.event != "" {
		name, ok := trace.EventName(owner.EventID())
		if !ok || name != o.event {
			return false
		}
	}
	return true
}
