package report

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/stream"
)

// Stream ids are only for telling traces apart in logs.
var nextID int64

// ID identifies the trace among the traces opened by this process.
func (t *Trace) ID() int {
	if t.id == 0 {
		t.id = int(atomic.AddInt64(&nextID, 1))
	}
	return t.id
}

// EventID resolves an event type by its full name.
func (t *Trace) EventID(name string) (int, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// OnEvent replays the already-loaded entries of the event type through
// the handler. A report is fully read before anything can register, so
// registration and the load pass collapse into one step; the returned
// cancel has nothing left to undo.
func (t *Trace) OnEvent(eventID int, h func(stream.Entry)) (func(), error) {
	if eventID < 0 || eventID >= len(t.names) {
		return nil, errors.Errorf("unknown event id %d", eventID)
	}
	for _, e := range t.entries {
		if e.eventID == eventID {
			h(e)
		}
	}
	return func() {}, nil
}

// OnDraw registers a handler for the drawing passes this trace emits.
func (t *Trace) OnDraw(h func(plugin.DrawContext)) (func(), error) {
	t.draws = append(t.draws, h)
	i := len(t.draws) - 1
	return func() { t.draws[i] = nil }, nil
}

// EmitDraw runs one drawing pass through every registered handler.
func (t *Trace) EmitDraw(dc plugin.DrawContext) {
	for _, h := range t.draws {
		if h != nil {
			h(dc)
		}
	}
}
