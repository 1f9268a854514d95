// Package streamtest provides in-memory trace entries for tests.
package streamtest

import "github.com/tracekit/stacklook/pkg/stream"

// DefaultFlags marks an entry visible in both views with its cached
// fields untouched, the state entries are in right after loading.
const DefaultFlags = stream.FlagListVisible | stream.FlagGraphVisible | stream.FlagUntouched

// Entry is a mutable stream.Entry backed by plain fields.
type Entry struct {
	ID      int
	Cpu     int
	TS      int64
	Pid     int
	RawPid  int
	Task    string
	Info    string
	Bits    stream.Flags
	NextPtr *Entry
}

func (e *Entry) EventID() int     { return e.ID }
func (e *Entry) CPU() int         { return e.Cpu }
func (e *Entry) Timestamp() int64 { return e.TS }
func (e *Entry) PID() int         { return e.Pid }
func (e *Entry) TaskName() string { return e.Task }
func (e *Entry) Payload() string  { return e.Info }

func (e *Entry) Flags() stream.Flags { return e.Bits }

// RecordPID returns RawPid when set and falls back to Pid, so fixtures
// only need both fields when they model a rewritten cache.
func (e *Entry) RecordPID() int {
	if e.RawPid != 0 {
		return e.RawPid
	}
	return e.Pid
}

func (e *Entry) Next() stream.Entry {
	if e.NextPtr == nil {
		return nil
	}
	return e.NextPtr
}

// Chain links the entries in order, as the host links same-CPU entries,
// and returns them unchanged.
func Chain(entries ...*Entry) []*Entry {
	for i := 0; i < len(entries)-1; i++ {
		entries[i].NextPtr = entries[i+1]
	}
	return entries
}
