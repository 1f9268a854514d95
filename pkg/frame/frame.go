// Package frame models one line of a textual kernel stack capture.
package frame

import "strings"

const (
	// Marker introduces every frame line in a rendered stack capture.
	Marker = "=>"

	// DisplayLimit caps how many characters of a function name are shown
	// before it is cut off.
	DisplayLimit = 44

	ellipsis = "..."
)

// Frame is one parsed stack frame.
type Frame struct {
	// Name is the function name.
	Name string `json:"name"`

	// Address is the hex instruction address, without parentheses, when
	// the capture carried one.
	Address string `json:"address,omitempty"`
}

// Parse reads a frame of the form "=> name (address)". The address part
// is optional. It reports false when the text holds no frame marker.
func Parse(s string) (Frame, bool) {
	i := strings.Index(s, Marker)
	if i < 0 {
		return Frame{}, false
	}
	rest := strings.TrimLeft(s[i+len(Marker):], " ")
	if j := strings.Index(rest, " ("); j >= 0 {
		addr := rest[j+2:]
		if k := strings.IndexByte(addr, ')'); k >= 0 {
			addr = addr[:k]
		}
		return Frame{Name: rest[:j], Address: addr}, true
	}
	return Frame{Name: strings.TrimRight(rest, " \n")}, true
}

// Display returns the function name cut to DisplayLimit characters, with
// an ellipsis marking the cut.
func (f Frame) Display() string {
	if len(f.Name) > DisplayLimit {
		return f.Name[:DisplayLimit] + ellipsis
	}
	return f.Name
}
