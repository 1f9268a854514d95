package report

import "github.com/tracekit/stacklook/pkg/stream"

// Entry is one parsed report line. Entries are linked per CPU in record
// order and satisfy stream.Entry.
type Entry struct {
	eventID int
	cpu     int
	ts      int64
	pid     int
	rawPID  int
	task    string
	payload string
	flags   stream.Flags
	next    *Entry
}

func (e *Entry) EventID() int     { return e.eventID }
func (e *Entry) CPU() int         { return e.cpu }
func (e *Entry) Timestamp() int64 { return e.ts }
func (e *Entry) PID() int         { return e.pid }
func (e *Entry) RecordPID() int   { return e.rawPID }
func (e *Entry) TaskName() string { return e.task }
func (e *Entry) Payload() string  { return e.payload }

func (e *Entry) Flags() stream.Flags { return e.flags }

func (e *Entry) Next() stream.Entry {
	if e.next == nil {
		return nil
	}
	return e.next
}

// OverridePID rewrites the cached task id the way host plugins do,
// clearing the untouched bit. The record's own id stays reachable
// through RecordPID.
func (e *Entry) OverridePID(pid int) {
	e.pid = pid
	e.flags &^= stream.FlagUntouched
}

// SetVisible flips one of the entry's visibility bits, mimicking a host
// filter pass.
func (e *Entry) SetVisible(filter stream.Filter, visible bool) {
	var bit stream.Flags
	switch filter {
	case stream.ListView:
		bit = stream.FlagListVisible
	case stream.GraphView:
		bit = stream.FlagGraphVisible
	default:
		return
	}
	if visible {
		e.flags |= bit
	} else {
		e.flags &^= bit
	}
}
