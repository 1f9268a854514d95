package plugin

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tracekit/stacklook/pkg/annotate"
	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/correlate"
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/stream"
)

// ErrEventUnavailable means the stream lacks an event type the annotator
// cannot work without.
var ErrEventUnavailable = errors.New("event type unavailable in stream")

type options struct {
	logger  zerolog.Logger
	maxHops int
}

type Option func(*options)

// WithLogger routes the session's logging through l instead of
// discarding it.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxHops caps the capture search; see correlate.WithMaxHops.
func WithMaxHops(n int) Option {
	return func(o *options) {
		o.maxHops = n
	}
}

// Session is one attachment of the annotator to a stream.
type Session struct {
	host    Stream
	cfg     *config.Config
	events  event.Table
	corr    *correlate.Correlator
	cancels []func()
	log     zerolog.Logger
}

// Attach wires the annotator to a stream: it resolves the event ids and
// registers the collection and drawing callbacks. The stack capture
// event type must exist in the stream. The scheduling event types may be
// absent; the session then never collects owners of that type. When
// Attach fails, nothing stays registered.
func Attach(host Stream, cfg *config.Config, opts ...Option) (*Session, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	stackID, ok := host.EventID(event.KernelStack.String())
	if !ok {
		return nil, errors.Wrap(ErrEventUnavailable, event.KernelStack.String())
	}
	events := event.Table{SwitchID: -1, WakingID: -1, StackID: stackID}
	if id, ok := host.EventID(event.SchedSwitch.String()); ok {
		events.SwitchID = id
	}
	if id, ok := host.EventID(event.SchedWaking.String()); ok {
		events.WakingID = id
	}

	s := Session{
		host:   host,
		cfg:    cfg,
		events: events,
		corr:   correlate.New(stackID, correlate.WithMaxHops(o.maxHops)),
		log:    o.logger,
	}
	for _, name := range event.Owners() {
		id := -1
		switch name {
		case event.SchedSwitch:
			id = events.SwitchID
		case event.SchedWaking:
			id = events.WakingID
		}
		if id < 0 {
			s.log.Warn().Str("event", name.String()).Msg("event type absent from stream")
			continue
		}
		cancel, err := host.OnEvent(id, s.corr.Collect)
		if err != nil {
			s.Detach()
			return nil, errors.Wrapf(err, "register handler for %s", name)
		}
		s.cancels = append(s.cancels, cancel)
	}
	cancel, err := host.OnDraw(s.Draw)
	if err != nil {
		s.Detach()
		return nil, errors.Wrap(err, "register draw handler")
	}
	s.cancels = append(s.cancels, cancel)

	s.log.Debug().
		Int("stream", host.ID()).
		Int("stack_event", stackID).
		Msg("attached")
	return &s, nil
}

// Detach unregisters everything the session registered with the host.
func (s *Session) Detach() {
	for _, cancel := range s.cancels {
		if cancel != nil {
			cancel()
		}
	}
	s.cancels = nil
}

// Events returns the event ids resolved at attach time.
func (s *Session) Events() event.Table {
	return s.events
}

// Pairs returns every collected owner with its capture, resolving them
// on first use.
func (s *Session) Pairs() []correlate.Pair {
	return s.corr.Pairs()
}

// Draw renders the markers of one row pass. Passes over anything but
// task and CPU rows are ignored, as are passes showing more entries
// than the configured ceiling.
func (s *Session) Draw(dc DrawContext) {
	if dc == nil {
		return
	}
	kind := dc.Kind()
	if kind != DrawTask && kind != DrawCPU {
		return
	}
	if dc.VisibleCount() > s.cfg.Ceiling() {
		return
	}
	if !s.corr.HasStacks() {
		return
	}
	sink := dc.Sink()
	if sink == nil {
		return
	}
	markers := s.Markers(dc)
	for _, m := range markers {
		m.Draw(sink)
	}
	s.log.Debug().
		Int("row", dc.RowValue()).
		Int("markers", len(markers)).
		Msg("row drawn")
}

// Markers builds the markers a row pass shows, in stream order.
func (s *Session) Markers(dc DrawContext) []annotate.Marker {
	var markers []annotate.Marker
	for _, pair := range s.corr.Pairs() {
		if !annotate.Eligible(pair.Owner, pair.Stack, s.cfg, s.events) {
			continue
		}
		pid := stream.ResolveTaskID(pair.Owner)
		switch dc.Kind() {
		case DrawTask:
			if pid != dc.RowValue() {
				continue
			}
		case DrawCPU:
			if pair.Owner.CPU() != dc.RowValue() {
				continue
			}
		}
		base, ok := dc.Place(pair.Owner)
		if !ok {
			continue
		}
		name, _ := s.events.OwnerName(pair.Owner.EventID())
		body := s.markerColor(pid, dc)
		markers = append(markers, annotate.Build(pair.Owner, pair.Stack, name, base, body, s.cfg.OutlineColor()))
	}
	return markers
}

// markerColor picks the task's color when that is switched on and the
// host has one, and the fixed marker color otherwise.
func (s *Session) markerColor(pid int, dc DrawContext) plot.Color {
	if !s.cfg.UseTaskColors() {
		return s.cfg.MarkerColor()
	}
	table := dc.TaskColors()
	if table == nil {
		return s.cfg.MarkerColor()
	}
	color, ok := table.TaskColor(pid)
	if !ok {
		return s.cfg.MarkerColor()
	}
	return color
}
