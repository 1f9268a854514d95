package stream

// Filter selects one of the host's visibility masks.
type Filter int

const (
	ListView Filter = iota
	GraphView
)

// Flags carries the per-entry bits the host maintains while filters and
// other plugins run over the data.
type Flags uint8

const (
	// FlagListVisible marks an entry that passed the list view filters.
	FlagListVisible Flags = 1 << iota

	// FlagGraphVisible marks an entry that passed the graph view filters.
	FlagGraphVisible

	// FlagUntouched is set while no plugin has rewritten the entry's
	// cached fields. Once clear, the cached task id can no longer be
	// trusted and must be recomputed from the raw record.
	FlagUntouched
)

// Visible reports whether the entry passed the filters of the given view.
func (f Flags) Visible(filter Filter) bool {
	switch filter {
	case ListView:
		return f&FlagListVisible != 0
	case GraphView:
		return f&FlagGraphVisible != 0
	}
	return false
}

// Untouched reports whether the entry's cached fields still hold the
// values assigned at load time.
func (f Flags) Untouched() bool {
	return f&FlagUntouched != 0
}

// Entry is one recorded trace event, owned by the host. Implementations
// are expected to be pointers: entries are compared by identity.
//
// PID returns the cached task id field, which other plugins may have
// rewritten. RecordPID re-derives the task id from the raw record and is
// always trustworthy. Callers should resolve the task id through
// ResolveTaskID rather than reading PID directly.
type Entry interface {
	// EventID returns the stream-specific numeric event type id.
	EventID() int

	// CPU returns the CPU the event was recorded on.
	CPU() int

	// Timestamp returns the event time in nanoseconds.
	Timestamp() int64

	// PID returns the cached task id field.
	PID() int

	// RecordPID re-derives the task id from the raw record.
	RecordPID() int

	// TaskName returns the command name of the task that emitted the
	// event.
	TaskName() string

	// Payload returns the rendered info text of the entry.
	Payload() string

	// Flags returns the entry's current visibility and bookkeeping bits.
	Flags() Flags

	// Next returns the chronologically next entry on the same CPU, or
	// nil at the end of the chain.
	Next() Entry
}
