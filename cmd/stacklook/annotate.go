package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tracekit/stacklook/internal/errorutil"
	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/export"
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/report"
)

type annotateOptions struct {
	*commonOptions

	ceiling    int
	rows       string
	width      int
	taskColors bool
	skip       int
	maxHops    int
	out        string
	jobs       int

	// stdoutMu keeps documents whole when several reports render to
	// stdout at once.
	stdoutMu sync.Mutex
}

func newAnnotateCmd(opts *commonOptions) *cobra.Command {
	o := &annotateOptions{commonOptions: opts}

	cmd := &cobra.Command{
		Use:   "annotate <report>...",
		Short: "annotate renders stack markers for trace reports into JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  o.run,
	}
	cmd.Flags().IntVar(&o.ceiling, "ceiling", config.DefaultCeiling, "Entry count above which rows are not annotated")
	cmd.Flags().StringVar(&o.rows, "rows", "both", "Row passes to render (cpu, task, both)")
	cmd.Flags().IntVar(&o.width, "width", export.DefaultWidth, "Canvas width in pixels")
	cmd.Flags().BoolVar(&o.taskColors, "task-colors", false, "Color markers per task instead of the fixed marker color")
	cmd.Flags().IntVar(&o.skip, "skip", config.DefaultSkipOffset, "Topmost capture frames hidden from previews")
	cmd.Flags().IntVar(&o.maxHops, "max-hops", 0, "Entries searched past an owner for its capture, 0 for no cap")
	cmd.Flags().StringVar(&o.out, "out", "", "Directory for the documents, stdout when unset")
	cmd.Flags().IntVar(&o.jobs, "jobs", runtime.NumCPU(), "Reports rendered in parallel")

	return cmd
}

func (o *annotateOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := o.configure(cmd)
	if err != nil {
		return err
	}
	families, err := rowFamilies(o.rows)
	if err != nil {
		return err
	}
	if o.out != "" {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}

	jobs := o.jobs
	if jobs < 1 {
		jobs = 1
	}
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for _, path := range args {
		path := path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			doc, err := o.render(path, cfg, families)
			if err != nil {
				return errors.Wrap(err, path)
			}
			return o.write(doc, path)
		})
	}
	return g.Wait()
}

// configure loads the environment-seeded configuration and lays the
// flags the user actually set on top.
func (o *annotateOptions) configure(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	s := cfg.Snapshot()
	if cmd.Flags().Changed("ceiling") {
		s.Ceiling = o.ceiling
	}
	if cmd.Flags().Changed("task-colors") {
		s.UseTaskColors = o.taskColors
	}
	if cmd.Flags().Changed("skip") {
		for name, meta := range s.Events {
			meta.SkipOffset = o.skip
			s.Events[name] = meta
		}
	}
	if err := cfg.Apply(s); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rowFamilies(rows string) ([]plugin.DrawKind, error) {
	switch rows {
	case "cpu":
		return []plugin.DrawKind{plugin.DrawCPU}, nil
	case "task":
		return []plugin.DrawKind{plugin.DrawTask}, nil
	case "both":
		return []plugin.DrawKind{plugin.DrawCPU, plugin.DrawTask}, nil
	}
	return nil, errors.Wrapf(errorutil.ErrInvalidConfig, "unknown row family %q", rows)
}

func (o *annotateOptions) render(path string, cfg *config.Config, families []plugin.DrawKind) (*export.Document, error) {
	trace, err := report.Load(path)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str("report", trace.Source()).Logger()
	sess, err := plugin.Attach(trace, cfg, plugin.WithLogger(logger), plugin.WithMaxHops(o.maxHops))
	if err != nil {
		if errors.Is(err, plugin.ErrEventUnavailable) {
			logger.Warn().Err(err).Msg("nothing to annotate")
			return export.NewDocument(trace.Source()), nil
		}
		return nil, err
	}
	defer sess.Detach()
	return buildDocument(trace, sess, cfg, families, o.width), nil
}

// buildDocument runs one drawing pass per row the way an interactive
// host would and gathers what came out. The structured marker list is
// filled from the first row family alone; the second family draws the
// same owners again on its own rows.
func buildDocument(trace *report.Trace, sess *plugin.Session, cfg *config.Config, families []plugin.DrawKind, width int) *export.Document {
	first, last := trace.Span()
	layout := export.FitLayout(first, last, width)
	doc := export.NewDocument(trace.Source())

	var colors plot.ColorTable
	if cfg.UseTaskColors() {
		colors = export.DefaultPalette
	}

	index := 0
	for fi, kind := range families {
		values := trace.CPUs()
		if kind == plugin.DrawTask {
			values = trace.PIDs()
		}
		for _, value := range values {
			sink := new(export.Collector)
			dc := export.NewRowContext(kind, value, index, trace.Len(), layout, sink, colors)
			trace.EmitDraw(dc)
			doc.AddRow(kind, value, sink.Primitives)
			// An empty sink means the pass was gated off or the row had
			// nothing to show; either way there is nothing to describe.
			if fi == 0 && len(sink.Triangles) > 0 {
				doc.AddMarkers(cfg, sess.Markers(dc)...)
			}
			index++
		}
	}
	doc.Sort()
	return doc
}

func (o *annotateOptions) write(doc *export.Document, path string) error {
	if o.out == "" {
		o.stdoutMu.Lock()
		defer o.stdoutMu.Unlock()
		return doc.WriteJSON(os.Stdout)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
	f, err := os.Create(filepath.Join(o.out, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return doc.WriteJSON(f)
}
