package correlate_test

import (
	"testing"

	"github.com/tracekit/stacklook/internal/testutil"
	"github.com/tracekit/stacklook/pkg/correlate"
	"github.com/tracekit/stacklook/pkg/stream"
	"github.com/tracekit/stacklook/pkg/stream/streamtest"
)

const (
	switchID = 101
	wakingID = 102
	stackID  = 103
	otherID  = 104
)

func TestFindStack(t *testing.T) {
	tests := []struct {
		name  string
		chain []*streamtest.Entry
		owner int // index into chain
		stack int // index into chain, -1 for none
		opts  []correlate.Option
	}{
		{
			name: "capture right behind the owner",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: 1,
		},
		{
			name: "unrelated event between owner and capture",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: otherID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: 2,
		},
		{
			name: "capture for another task is passed over",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: wakingID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 7, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: 2,
		},
		{
			name: "no capture on the chain",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: otherID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: -1,
		},
		{
			name: "a capture entry matches itself",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: 0,
		},
		{
			name: "rewritten pid caches fall back to the record",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 0, RawPid: 42, Bits: stream.FlagListVisible | stream.FlagGraphVisible},
				&streamtest.Entry{ID: stackID, Pid: 0, RawPid: 42, Bits: stream.FlagListVisible | stream.FlagGraphVisible},
			),
			owner: 0,
			stack: 1,
		},
		{
			name: "hop cap cuts the search short",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: otherID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: -1,
			opts:  []correlate.Option{correlate.WithMaxHops(1)},
		},
		{
			name: "hop cap wide enough",
			chain: streamtest.Chain(
				&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: otherID, Pid: 42, Bits: streamtest.DefaultFlags},
				&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
			),
			owner: 0,
			stack: 2,
			opts:  []correlate.Option{correlate.WithMaxHops(2)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := correlate.New(stackID, test.opts...)
			got := c.FindStack(test.chain[test.owner])
			var want stream.Entry
			if test.stack >= 0 {
				want = test.chain[test.stack]
			}
			if got != want {
				t.Fatalf("wanted entry %d, got %v\n", test.stack, got)
			}
		})
	}
}

func TestFindStackNilOwner(t *testing.T) {
	if got := correlate.New(stackID).FindStack(nil); got != nil {
		t.Fatalf("wanted nil, got %v\n", got)
	}
}

func TestHasStacks(t *testing.T) {
	chain := streamtest.Chain(
		&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
		&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
		&streamtest.Entry{ID: wakingID, Pid: 7, Bits: streamtest.DefaultFlags},
	)

	c := correlate.New(stackID)
	c.Collect(chain[0])
	c.Collect(chain[2])

	if !c.HasStacks() {
		t.Fatal("no stacks found")
	}

	pairs := c.Pairs()
	want := []correlate.Pair{
		{Owner: chain[0], Stack: chain[1]},
		{Owner: chain[2]},
	}
	if diff := testutil.Diff(want, pairs); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}

	stack, ok := c.StackFor(chain[0])
	if !ok || stack != chain[1] {
		t.Fatalf("wanted capture for owner, got %v, %v\n", stack, ok)
	}
	if _, ok := c.StackFor(chain[2]); ok {
		t.Fatal("owner without capture reported one")
	}
}

func TestHasStacksEmpty(t *testing.T) {
	if correlate.New(stackID).HasStacks() {
		t.Fatal("empty correlator claims stacks")
	}
}

func TestHasStacksResolvesOnce(t *testing.T) {
	chain := streamtest.Chain(
		&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
		&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
	)

	c := correlate.New(stackID)
	c.Collect(chain[0])
	if !c.HasStacks() {
		t.Fatal("no stacks found")
	}

	// Cutting the chain cannot change an already-resolved answer.
	chain[0].NextPtr = nil
	if !c.HasStacks() {
		t.Fatal("resolved answer was recomputed")
	}
}

func TestCollectReArmsResolution(t *testing.T) {
	chain := streamtest.Chain(
		&streamtest.Entry{ID: switchID, Pid: 42, Bits: streamtest.DefaultFlags},
		&streamtest.Entry{ID: stackID, Pid: 42, Bits: streamtest.DefaultFlags},
	)
	lone := &streamtest.Entry{ID: wakingID, Pid: 7, Bits: streamtest.DefaultFlags}

	c := correlate.New(stackID)
	c.Collect(chain[0])
	if !c.HasStacks() {
		t.Fatal("no stacks found")
	}

	chain[0].NextPtr = nil
	c.Collect(lone)
	if c.HasStacks() {
		t.Fatal("stale resolution survived a new Collect")
	}
	if _, ok := c.StackFor(chain[0]); ok {
		t.Fatal("stale capture still indexed")
	}
}

func TestCollectIgnoresNil(t *testing.T) {
	c := correlate.New(stackID)
	c.Collect(nil)
	if got := c.Len(); got != 0 {
		t.Fatalf("wanted: 0, got: %d\n", got)
	}
}
