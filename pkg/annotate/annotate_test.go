package annotate_test

import (
	"testing"

	"github.com/tracekit/stacklook/internal/testutil"
	"github.com/tracekit/stacklook/pkg/annotate"
	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/stream"
	"github.com/tracekit/stacklook/pkg/stream/streamtest"
)

const (
	switchID = 101
	wakingID = 102
	stackID  = 103
	otherID  = 104
)

var events = event.Table{SwitchID: switchID, WakingID: wakingID, StackID: stackID}

func TestEligible(t *testing.T) {
	stack := &streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags}

	tests := []struct {
		name   string
		owner  *streamtest.Entry
		stack  *streamtest.Entry
		setup  func(*testing.T, *config.Config)
		output bool
	}{
		{
			name:   "visible switch with a capture",
			owner:  &streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
			stack:  stack,
			output: true,
		},
		{
			name:   "visible waking with a capture",
			owner:  &streamtest.Entry{ID: wakingID, Pid: 42, Bits: streamtest.DefaultFlags},
			stack:  stack,
			output: true,
		},
		{
			name:   "no capture",
			owner:  &streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
			output: false,
		},
		{
			name:   "unsupported event type",
			owner:  &streamtest.Entry{ID: otherID, Pid: 42, Bits: streamtest.DefaultFlags},
			stack:  stack,
			output: false,
		},
		{
			name:  "event type disabled in the configuration",
			owner: &streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
			stack: stack,
			setup: func(t *testing.T, c *config.Config) {
				s := c.Snapshot()
				s.Events[event.SchedSwitch] = config.EventMeta{Enabled: false, SkipOffset: 3}
				if err := c.Apply(s); err != nil {
					t.Fatal(err)
				}
			},
			output: false,
		},
		{
			name:   "filtered out of the list view",
			owner:  &streamtest.Entry{ID: switchID, Pid: 42, Bits: stream.FlagGraphVisible | stream.FlagUntouched},
			stack:  stack,
			output: false,
		},
		{
			name:   "filtered out of the graph view",
			owner:  &streamtest.Entry{ID: switchID, Pid: 42, Bits: stream.FlagListVisible | stream.FlagUntouched},
			stack:  stack,
			output: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := config.Default()
			if test.setup != nil {
				test.setup(t, cfg)
			}
			var owner, stack stream.Entry
			if test.owner != nil {
				owner = test.owner
			}
			if test.stack != nil {
				stack = test.stack
			}
			got := annotate.Eligible(owner, stack, cfg, events)
			if diff := testutil.Diff(test.output, got); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestEligibleAbsentEventType(t *testing.T) {
	// A stream without sched_waking resolves its id to -1; entries can
	// never match it.
	partial := event.Table{SwitchID: switchID, WakingID: -1, StackID: stackID}
	owner := &streamtest.Entry{ID: -1, Pid: 42, Bits: streamtest.DefaultFlags}
	stack := &streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags}
	if annotate.Eligible(owner, stack, config.Default(), partial) {
		t.Fatal("entry matched an absent event type")
	}
}

func TestBuildGeometry(t *testing.T) {
	owner := &streamtest.Entry{
		ID:   switchID,
		Pid:  1234,
		Task: "tickd",
		Info: "tickd:1234 [120] S ==> swapper/2:0 [120]",
		Bits: streamtest.DefaultFlags,
	}
	stack := &streamtest.Entry{ID: stackID, Pid: 1234, Info: "<stack trace >\n=> foo (1)\n", Bits: streamtest.DefaultFlags}

	m := annotate.Build(owner, stack, event.SchedSwitch, plot.Point{X: 100, Y: 100}, plot.White, plot.Black)

	wantBody := plot.Triangle{
		A:     plot.Point{X: 76, Y: 73},
		B:     plot.Point{X: 124, Y: 73},
		C:     plot.Point{X: 100, Y: 98},
		Color: plot.White,
		Fill:  true,
	}
	if diff := testutil.Diff(wantBody, m.Body); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	wantOutline := wantBody
	wantOutline.Color = plot.Black
	wantOutline.Fill = false
	if diff := testutil.Diff(wantOutline, m.Outline); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	wantLabel := plot.Label{
		Text:  "STACK",
		At:    plot.Point{X: 86, Y: 84},
		Color: plot.Black,
	}
	if diff := testutil.Diff(wantLabel, m.Label); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	wantSub := &plot.Label{
		Text:  "(S)",
		At:    plot.Point{X: 91, Y: 92},
		Color: plot.Black,
		Bold:  true,
	}
	if diff := testutil.Diff(wantSub, m.Sub); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestBuildTextColorFollowsBody(t *testing.T) {
	owner := &streamtest.Entry{ID: wakingID, Pid: 7, Bits: streamtest.DefaultFlags}
	stack := &streamtest.Entry{ID: stackID, Pid: 7, Bits: streamtest.DefaultFlags}

	m := annotate.Build(owner, stack, event.SchedWaking, plot.Point{X: 50, Y: 50}, plot.Color{B: 0x80}, plot.Black)
	if diff := testutil.Diff(plot.White, m.Label.Color); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestBuildSubOnlyForSwitch(t *testing.T) {
	owner := &streamtest.Entry{ID: wakingID, Pid: 7, Info: "comm=tickd pid=7", Bits: streamtest.DefaultFlags}
	stack := &streamtest.Entry{ID: stackID, Pid: 7, Bits: streamtest.DefaultFlags}

	m := annotate.Build(owner, stack, event.SchedWaking, plot.Point{X: 50, Y: 50}, plot.White, plot.Black)
	if m.Sub != nil {
		t.Fatalf("waking marker grew a state label: %+v", m.Sub)
	}
}

type sinkLog struct {
	triangles []plot.Triangle
	labels    []plot.Label
}

func (s *sinkLog) Triangle(t plot.Triangle) { s.triangles = append(s.triangles, t) }
func (s *sinkLog) Label(l plot.Label)       { s.labels = append(s.labels, l) }

func TestDraw(t *testing.T) {
	owner := &streamtest.Entry{
		ID:   switchID,
		Pid:  1234,
		Info: "tickd:1234 [120] R ==> swapper/0:0 [120]",
		Bits: streamtest.DefaultFlags,
	}
	stack := &streamtest.Entry{ID: stackID, Pid: 1234, Bits: streamtest.DefaultFlags}
	m := annotate.Build(owner, stack, event.SchedSwitch, plot.Point{X: 100, Y: 100}, plot.White, plot.Black)

	var sink sinkLog
	m.Draw(&sink)

	if diff := testutil.Diff([]plot.Triangle{m.Body, m.Outline}, sink.triangles); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if diff := testutil.Diff([]plot.Label{m.Label, *m.Sub}, sink.labels); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestDistance(t *testing.T) {
	owner := &streamtest.Entry{ID: wakingID, Pid: 7, Bits: streamtest.DefaultFlags}
	stack := &streamtest.Entry{ID: stackID, Pid: 7, Bits: streamtest.DefaultFlags}
	m := annotate.Build(owner, stack, event.SchedWaking, plot.Point{X: 100, Y: 100}, plot.White, plot.Black)

	if got := m.Distance(plot.Point{X: 100, Y: 80}); got != 0 {
		t.Fatalf("wanted: 0, got: %v\n", got)
	}
	if got := m.Distance(plot.Point{X: 0, Y: 0}); got == 0 {
		t.Fatal("missed pointer scored as a hit")
	}
	if !m.Contains(plot.Point{X: 76, Y: 73}) {
		t.Fatal("vertex not on the marker")
	}
}

func TestHover(t *testing.T) {
	owner := &streamtest.Entry{
		ID:   switchID,
		Pid:  1234,
		Task: "tickd",
		Info: "tickd:1234 [120] S ==> swapper/2:0 [120]",
		Bits: streamtest.DefaultFlags,
	}
	stack := &streamtest.Entry{
		ID:   stackID,
		Pid:  1234,
		Info: "<stack trace >\n=> a (1)\n=> b (2)\n=> c (3)\n=> d (4)\n=> e (5)\n",
		Bits: streamtest.DefaultFlags,
	}
	m := annotate.Build(owner, stack, event.SchedSwitch, plot.Point{X: 100, Y: 100}, plot.White, plot.Black)

	h := m.Hover(config.Default())
	want := []string{"d", "e", "-", "(End of stack)"}
	if h.Task != "tickd" {
		t.Fatalf("wanted: tickd, got: %s\n", h.Task)
	}
	if diff := testutil.Diff(want, h.Lines); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestDetail(t *testing.T) {
	owner := &streamtest.Entry{
		ID:   switchID,
		Pid:  1234,
		Task: "tickd",
		Info: "tickd:1234 [120] S ==> swapper/2:0 [120]",
		Bits: streamtest.DefaultFlags,
	}
	stack := &streamtest.Entry{
		ID:   stackID,
		Pid:  1234,
		Info: "<stack trace >\n=> __schedule (ffffffff81891f16)",
		Bits: streamtest.DefaultFlags,
	}
	m := annotate.Build(owner, stack, event.SchedSwitch, plot.Point{X: 100, Y: 100}, plot.White, plot.Black)

	v := m.Detail()
	if v.Title != "Kernel stack for task 'tickd':" {
		t.Fatalf("wanted title, got: %s\n", v.Title)
	}
	if v.Info != "Task was in state S - sleeping." {
		t.Fatalf("wanted state line, got: %s\n", v.Info)
	}
	if v.Stack != "(top)\n=> __schedule (ffffffff81891f16)" {
		t.Fatalf("unexpected stack text: %s\n", v.Stack)
	}
}
