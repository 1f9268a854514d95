package plot

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/tracekit/stacklook/internal/errorutil"
)

// Color is an opaque RGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 0xff, G: 0xff, B: 0xff}
)

// Intensity returns the perceived luminance of the color, weighting the
// channels the way the eye does.
func (c Color) Intensity() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// TextColor picks black or white for text drawn over the given
// background, whichever keeps the text readable.
func TextColor(background Color) Color {
	if background.Intensity() > 128 {
		return Black
	}
	return White
}

// Hex renders the color as a "#rrggbb" triple.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor reads a "#rrggbb" hex triple.
func ParseColor(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, errors.Wrapf(errorutil.ErrInvalidConfig, "color %q is not of the form #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, errors.Wrapf(errorutil.ErrInvalidConfig, "color %q is not of the form #rrggbb", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
