// Package plot holds the drawing primitives the annotator hands to a
// host renderer. The package computes positions and colors only; putting
// pixels on a screen is the host's job.
package plot

import "math"

// Point is a pixel position. The origin sits at the top-left corner of
// the drawing surface, with y growing downward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Triangle is a filled or outlined triangle.
type Triangle struct {
	A     Point `json:"a"`
	B     Point `json:"b"`
	C     Point `json:"c"`
	Color Color `json:"color"`
	Fill  bool  `json:"fill"`
}

// Area returns the absolute area of the triangle abc.
func Area(a, b, c Point) float64 {
	return math.Abs(float64(a.X*(b.Y-c.Y)+b.X*(c.Y-a.Y)+c.X*(a.Y-b.Y))) / 2
}

func (t Triangle) Area() float64 {
	return Area(t.A, t.B, t.C)
}

// Contains reports whether p lies inside the triangle or on its edge.
// The three triangles p forms with the sides tile the whole triangle
// exactly when p is inside, and on integer coordinates every area is an
// exact multiple of 0.5, so the sums can be compared for equality.
func (t Triangle) Contains(p Point) bool {
	parts := Area(p, t.B, t.C) + Area(t.A, p, t.C) + Area(t.A, t.B, p)
	return parts == t.Area()
}

// Label is a short piece of text anchored at a point.
type Label struct {
	Text  string `json:"text"`
	At    Point  `json:"at"`
	Color Color  `json:"color"`
	Bold  bool   `json:"bold,omitempty"`
}

// ColorTable exposes the host's per-task colors.
type ColorTable interface {
	TaskColor(pid int) (Color, bool)
}

// Sink consumes primitives in draw order. Later primitives paint over
// earlier ones.
type Sink interface {
	Triangle(Triangle)
	Label(Label)
}
