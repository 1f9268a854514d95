// Package plugin ties the annotator to a host: it resolves event ids,
// registers the load-time and draw-time callbacks, and owns the shared
// state in between.
package plugin

import (
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/stream"
)

// DrawKind says what a drawing pass is rendering.
type DrawKind int

const (
	// DrawTask is a pass over one task's row.
	DrawTask DrawKind = iota

	// DrawCPU is a pass over one CPU's row.
	DrawCPU
)

// Stream is the host's view of one loaded trace.
type Stream interface {
	// ID identifies the stream within the host.
	ID() int

	// EventID resolves an event type by its full name. ok is false when
	// the stream carries no such event type.
	EventID(name string) (id int, ok bool)

	// OnEvent registers a handler called once per entry of the event
	// type during load. The returned cancel unregisters it.
	OnEvent(eventID int, h func(stream.Entry)) (cancel func(), err error)

	// OnDraw registers a handler called for every row drawing pass. The
	// returned cancel unregisters it.
	OnDraw(h func(DrawContext)) (cancel func(), err error)
}

// DrawContext is one row drawing pass handed in by the host.
type DrawContext interface {
	// Kind says whether the row belongs to a task or a CPU.
	Kind() DrawKind

	// RowValue is the task id or CPU number of the row.
	RowValue() int

	// VisibleCount is how many entries the pass is about to draw.
	VisibleCount() int

	// Place maps an entry to its pixel position on the row. ok is false
	// when the entry has no position there.
	Place(e stream.Entry) (plot.Point, bool)

	// TaskColors exposes the host's per-task palette; may be nil.
	TaskColors() plot.ColorTable

	// Sink receives the primitives drawn during the pass.
	Sink() plot.Sink
}

// Shell is the part of the host that plugins hang UI elements on.
type Shell interface {
	AddMenuAction(label string, action func())
}
