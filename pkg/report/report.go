// Package report reads textual trace reports, the line format trace-cmd
// prints, into per-CPU entry chains the annotator can walk. It doubles
// as an offline host: a Trace satisfies plugin.Stream.
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tracekit/stacklook/internal/errorutil"
	"github.com/tracekit/stacklook/internal/timeutil"
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/frame"
	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/stream"
)

// maxLineBytes bounds a single report line; stack payload lines are
// short, entry lines can carry long rendered arguments.
const maxLineBytes = 1024 * 1024

// systems maps the bare event names reports print back to the full
// "system/event" names of the tracer's event table. Reports drop the
// system prefix, so it is restored by convention; names outside the
// table are kept bare, which only means they cannot be looked up by
// full name.
var systems = map[string]string{
	"sched_switch": "sched/sched_switch",
	"sched_waking": "sched/sched_waking",
	"sched_wakeup": "sched/sched_wakeup",
	"kernel_stack": "ftrace/kernel_stack",
	"function":     "ftrace/function",
	"bprint":       "ftrace/bprint",
}

func fullName(short string) string {
	if full, ok := systems[short]; ok {
		return full
	}
	return short
}

// Trace is a fully parsed report.
type Trace struct {
	id      int
	source  string
	entries []*Entry
	cpus    []int
	names   []string
	ids     map[string]int
	draws   []func(plugin.DrawContext)
}

// Read parses a report. Every line must be an entry line, a frame line
// continuing the capture right above it, or one of the report's own
// header lines; anything else fails the whole read.
func Read(r io.Reader) (*Trace, error) {
	t := Trace{ids: make(map[string]int)}
	tails := make(map[int]*Entry)
	var last *Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, frame.Marker):
			if last == nil || t.names[last.eventID] != event.KernelStack.String() {
				return nil, errors.Wrapf(errorutil.ErrMalformedInput, "line %d: frame line outside a stack capture", lineno)
			}
			last.payload += "\n" + trimmed
			continue
		case strings.HasPrefix(trimmed, "cpus="):
			// Report preamble.
			continue
		case strings.HasPrefix(trimmed, "CPU ") && strings.HasSuffix(trimmed, "is empty"):
			continue
		}

		e, err := t.parseEntry(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno)
		}
		if tail := tails[e.cpu]; tail != nil {
			tail.next = e
		}
		tails[e.cpu] = e
		t.entries = append(t.entries, e)
		last = e
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read report")
	}

	t.cpus = maps.Keys(tails)
	slices.Sort(t.cpus)
	return &t, nil
}

// parseEntry splits one "comm-pid [cpu] ts: event: payload" line.
func (t *Trace) parseEntry(line string) (*Entry, error) {
	rest := strings.TrimLeft(line, " ")

	// The comm may contain dashes and spaces, so the pid is found from
	// the bracketed CPU backwards.
	bracket := strings.Index(rest, " [")
	if bracket < 0 {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "no cpu field")
	}
	task := strings.TrimRight(rest[:bracket], " ")
	dash := strings.LastIndexByte(task, '-')
	if dash < 0 {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "no pid field")
	}
	pid, err := strconv.Atoi(task[dash+1:])
	if err != nil {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "bad pid field")
	}
	task = task[:dash]

	rest = rest[bracket+2:]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "unterminated cpu field")
	}
	cpu, err := strconv.Atoi(rest[:end])
	if err != nil {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "bad cpu field")
	}

	rest = strings.TrimLeft(rest[end+1:], " ")
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "no timestamp field")
	}
	ts, err := timeutil.ParseTrace(rest[:colon])
	if err != nil {
		return nil, errors.Wrapf(errorutil.ErrMalformedInput, "bad timestamp: %s", err)
	}

	rest = strings.TrimLeft(rest[colon+1:], " ")
	colon = strings.IndexByte(rest, ':')
	if colon < 0 {
		return nil, errors.Wrap(errorutil.ErrMalformedInput, "no event field")
	}
	name := fullName(rest[:colon])
	payload := strings.TrimLeft(rest[colon+1:], " ")

	id, ok := t.ids[name]
	if !ok {
		id = len(t.names)
		t.ids[name] = id
		t.names = append(t.names, name)
	}
	return &Entry{
		eventID: id,
		cpu:     cpu,
		ts:      ts,
		pid:     pid,
		rawPID:  pid,
		task:    task,
		payload: payload,
		flags:   stream.FlagListVisible | stream.FlagGraphVisible | stream.FlagUntouched,
	}, nil
}

// Len returns how many entries the report holds.
func (t *Trace) Len() int {
	return len(t.entries)
}

// Entries returns all entries in record order.
func (t *Trace) Entries() []*Entry {
	return t.entries
}

// CPUs returns the CPUs that recorded at least one entry, sorted.
func (t *Trace) CPUs() []int {
	return t.cpus
}

// PIDs returns the resolved task ids seen in the report, sorted.
func (t *Trace) PIDs() []int {
	seen := make(map[int]struct{})
	for _, e := range t.entries {
		seen[stream.ResolveTaskID(e)] = struct{}{}
	}
	pids := maps.Keys(seen)
	slices.Sort(pids)
	return pids
}

// EventName returns the full name behind a numeric event id.
func (t *Trace) EventName(id int) (string, bool) {
	if id < 0 || id >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// Span returns the first and last timestamp of the report, zeros when
// it is empty.
func (t *Trace) Span() (first, last int64) {
	if len(t.entries) == 0 {
		return 0, 0
	}
	first = t.entries[0].ts
	last = first
	for _, e := range t.entries[1:] {
		if e.ts < first {
			first = e.ts
		}
		if e.ts > last {
			last = e.ts
		}
	}
	return first, last
}

// Source names where the trace was read from, when known.
func (t *Trace) Source() string {
	return t.source
}
