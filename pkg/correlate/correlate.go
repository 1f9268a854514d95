// Package correlate pairs scheduling entries with the kernel stack
// captures recorded right after them on the same CPU.
package correlate

import "github.com/tracekit/stacklook/pkg/stream"

// Pair is an owner entry together with its stack capture, when one was
// found for it.
type Pair struct {
	Owner stream.Entry
	Stack stream.Entry
}

// Correlator collects owner entries while a stream loads and resolves
// which of them have a stack capture the first time anyone asks. It is
// not safe for concurrent use: hosts deliver load-time events from a
// single goroutine, and the first drawing pass completes the work.
type Correlator struct {
	stackID  int
	maxHops  int
	owners   []Pair
	byOwner  map[stream.Entry]stream.Entry
	presence presence
}

// presence stays unknown until the one-shot resolution pass runs.
type presence struct {
	known bool
	value bool
}

type Option func(*Correlator)

// WithMaxHops caps how many entries past the owner the search examines.
// Zero, the default, means no cap; captures land within a hop or two of
// their owner in practice, but nothing in the record format promises it.
func WithMaxHops(n int) Option {
	return func(c *Correlator) {
		c.maxHops = n
	}
}

// New returns a Correlator recognizing captures by their numeric event
// id.
func New(stackID int, opts ...Option) *Correlator {
	c := Correlator{stackID: stackID}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Collect records an owner entry seen during load. Collecting after a
// resolution pass re-arms it, so a later query sees the new entries.
func (c *Correlator) Collect(e stream.Entry) {
	if e == nil {
		return
	}
	c.owners = append(c.owners, Pair{Owner: e})
	c.presence = presence{}
}

// Len returns how many owner entries were collected.
func (c *Correlator) Len() int {
	return len(c.owners)
}

// FindStack walks the owner's CPU chain forward, the owner itself
// included, and returns the first capture recorded for the same task, or
// nil. Task ids on both sides are resolved, so entries whose cached pid
// was rewritten by other plugins still match.
func (c *Correlator) FindStack(owner stream.Entry) stream.Entry {
	if owner == nil {
		return nil
	}
	pid := stream.ResolveTaskID(owner)
	hops := 0
	for e := owner; e != nil; e = e.Next() {
		if e.EventID() == c.stackID && stream.ResolveTaskID(e) == pid {
			return e
		}
		if c.maxHops > 0 {
			hops++
			if hops > c.maxHops {
				return nil
			}
		}
	}
	return nil
}

// HasStacks reports whether any collected owner has a capture. The
// first call resolves all pairs; later calls are free.
func (c *Correlator) HasStacks() bool {
	if !c.presence.known {
		c.presence = presence{known: true, value: c.resolve()}
	}
	return c.presence.value
}

func (c *Correlator) resolve() bool {
	found := false
	c.byOwner = make(map[stream.Entry]stream.Entry, len(c.owners))
	for i := range c.owners {
		stack := c.FindStack(c.owners[i].Owner)
		c.owners[i].Stack = stack
		if stack == nil {
			continue
		}
		c.byOwner[c.owners[i].Owner] = stack
		found = true
	}
	return found
}

// Pairs returns every collected owner with its resolved capture,
// resolving them first when needed. The slice is shared with the
// Correlator and must not be modified.
func (c *Correlator) Pairs() []Pair {
	c.HasStacks()
	return c.owners
}

// StackFor returns the capture resolved for the owner, if any.
func (c *Correlator) StackFor(owner stream.Entry) (stream.Entry, bool) {
	c.HasStacks()
	stack, ok := c.byOwner[owner]
	return stack, ok
}
