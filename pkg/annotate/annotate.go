// Package annotate decides which entries get a stack marker and builds
// the marker's geometry.
package annotate

import (
	"math"

	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/preview"
	"github.com/tracekit/stacklook/pkg/schedstate"
	"github.com/tracekit/stacklook/pkg/stream"
)

// Marker triangle dimensions in pixels.
const (
	HalfWidth = 24
	Height    = 27
)

// LabelText is written across every marker.
const LabelText = "STACK"

// Eligible reports whether an owner entry gets a marker: it must have a
// capture, be of a supported event type, have that type enabled, and
// have survived the filters of both views.
func Eligible(owner, stack stream.Entry, cfg *config.Config, events event.Table) bool {
	if owner == nil || stack == nil {
		return false
	}
	name, ok := events.OwnerName(owner.EventID())
	if !ok {
		return false
	}
	if !cfg.Enabled(name) {
		return false
	}
	flags := owner.Flags()
	return flags.Visible(stream.ListView) && flags.Visible(stream.GraphView)
}

// Marker is one drawable stack annotation, anchored above the owner
// entry's position in the graph.
type Marker struct {
	Owner stream.Entry
	Stack stream.Entry
	Event event.Name

	Body    plot.Triangle
	Outline plot.Triangle
	Label   plot.Label

	// Sub carries the prev-state letter under sched_switch markers; nil
	// for other event types.
	Sub *plot.Label
}

// Build lays out a marker over the owner's base point, the graph
// position of the entry itself. The triangle hangs above the point so it
// never covers the entry's own dot.
func Build(owner, stack stream.Entry, name event.Name, base plot.Point, body, outline plot.Color) Marker {
	a := plot.Point{X: base.X - HalfWidth, Y: base.Y - Height}
	b := plot.Point{X: base.X + HalfWidth, Y: base.Y - Height}
	apex := plot.Point{X: base.X, Y: base.Y - 2}
	text := plot.TextColor(body)

	m := Marker{
		Owner:   owner,
		Stack:   stack,
		Event:   name,
		Body:    plot.Triangle{A: a, B: b, C: apex, Color: body, Fill: true},
		Outline: plot.Triangle{A: a, B: b, C: apex, Color: outline},
		Label: plot.Label{
			Text:  LabelText,
			At:    plot.Point{X: base.X - 14, Y: base.Y - 16},
			Color: text,
		},
	}
	if name == event.SchedSwitch {
		if letter, ok := schedstate.Letter(owner.Payload()); ok {
			m.Sub = &plot.Label{
				Text:  "(" + letter + ")",
				At:    plot.Point{X: apex.X - 9, Y: apex.Y - 6},
				Color: text,
				Bold:  true,
			}
		}
	}
	return m
}

// Draw hands the marker's primitives to the sink, bottom layer first.
func (m Marker) Draw(s plot.Sink) {
	if s == nil {
		return
	}
	s.Triangle(m.Body)
	s.Triangle(m.Outline)
	s.Label(m.Label)
	if m.Sub != nil {
		s.Label(*m.Sub)
	}
}

// Contains reports whether the pixel lies on the marker.
func (m Marker) Contains(p plot.Point) bool {
	return m.Outline.Contains(p)
}

// Distance ranks the marker for pointer matching: zero when the pointer
// is on it, unreachably far otherwise. Hosts pick the shape with the
// smallest distance, so a marker either wins outright or never does.
func (m Marker) Distance(p plot.Point) float64 {
	if m.Contains(p) {
		return 0
	}
	return math.MaxFloat64
}

// Hover builds the floating preview for the marker.
func (m Marker) Hover(cfg *config.Config) preview.Hover {
	if m.Stack == nil {
		return preview.Missing(m.Owner.TaskName())
	}
	return preview.HoverFor(m.Owner.TaskName(), m.Stack.Payload(), cfg.SkipOffset(m.Event))
}
