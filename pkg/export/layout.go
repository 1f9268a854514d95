package export

import (
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/stream"
)

const (
	DefaultWidth     = 1600
	DefaultRowHeight = 50

	// marginX keeps markers at the span edges inside the canvas; they
	// reach HalfWidth pixels past their base point.
	marginX = 30
)

// Layout maps trace time onto a canvas of fixed width, one row of
// pixels high per graph row.
type Layout struct {
	StartNS   int64 `json:"start_ns"`
	NsPerPx   int64 `json:"ns_per_px"`
	OriginX   int   `json:"origin_x"`
	RowHeight int   `json:"row_height"`
	Width     int   `json:"width"`
}

// FitLayout scales the timestamp span onto a canvas width pixels wide.
// Widths too small to hold the margins fall back to the default.
func FitLayout(first, last int64, width int) Layout {
	if width <= 2*marginX {
		width = DefaultWidth
	}
	span := last - first
	if span < 1 {
		span = 1
	}
	nsPerPx := span / int64(width-2*marginX)
	if nsPerPx < 1 {
		nsPerPx = 1
	}
	return Layout{
		StartNS:   first,
		NsPerPx:   nsPerPx,
		OriginX:   marginX,
		RowHeight: DefaultRowHeight,
		Width:     width,
	}
}

// X maps a timestamp to its column.
func (l Layout) X(ts int64) int {
	return l.OriginX + int((ts-l.StartNS)/l.NsPerPx)
}

// RowContext is an offline drawing pass over one graph row, in place of
// the pass an interactive host would hand in.
type RowContext struct {
	kind    plugin.DrawKind
	value   int
	baseY   int
	visible int
	layout  Layout
	sink    plot.Sink
	colors  plot.ColorTable
}

// NewRowContext builds the pass for the index-th row of the canvas.
// visible is the entry count the ceiling gate sees; colors may be nil.
func NewRowContext(kind plugin.DrawKind, value, index, visible int, l Layout, sink plot.Sink, colors plot.ColorTable) *RowContext {
	return &RowContext{
		kind:    kind,
		value:   value,
		baseY:   (index + 1) * l.RowHeight,
		visible: visible,
		layout:  l,
		sink:    sink,
		colors:  colors,
	}
}

func (c *RowContext) Kind() plugin.DrawKind { return c.kind }
func (c *RowContext) RowValue() int         { return c.value }
func (c *RowContext) VisibleCount() int     { return c.visible }

func (c *RowContext) Place(e stream.Entry) (plot.Point, bool) {
	return plot.Point{X: c.layout.X(e.Timestamp()), Y: c.baseY}, true
}

func (c *RowContext) TaskColors() plot.ColorTable {
	return c.colors
}

func (c *RowContext) Sink() plot.Sink {
	return c.sink
}

// Collector gathers the primitives of one drawing pass.
type Collector struct {
	Primitives
}

func (c *Collector) Triangle(t plot.Triangle) {
	c.Triangles = append(c.Triangles, t)
}

func (c *Collector) Label(l plot.Label) {
	c.Labels = append(c.Labels, l)
}

// Palette colors tasks deterministically, standing in for the host's
// per-task colors when rendering offline.
type Palette []plot.Color

// DefaultPalette is a muted ten-color scheme that keeps neighboring
// tasks apart.
var DefaultPalette = Palette{
	{R: 0x4e, G: 0x79, B: 0xa7},
	{R: 0xf2, G: 0x8e, B: 0x2b},
	{R: 0xe1, G: 0x57, B: 0x59},
	{R: 0x76, G: 0xb7, B: 0xb2},
	{R: 0x59, G: 0xa1, B: 0x4f},
	{R: 0xed, G: 0xc9, B: 0x48},
	{R: 0xb0, G: 0x7a, B: 0xa1},
	{R: 0xff, G: 0x9d, B: 0xa7},
	{R: 0x9c, G: 0x75, B: 0x5f},
	{R: 0xba, G: 0xb0, B: 0xac},
}

func (p Palette) TaskColor(pid int) (plot.Color, bool) {
	if len(p) == 0 {
		return plot.Color{}, false
	}
	return p[pid%len(p)], true
}
