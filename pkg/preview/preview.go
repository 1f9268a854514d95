// Package preview extracts the at-a-glance pieces of a stack capture:
// the few topmost frames shown while hovering a marker and the
// list-friendly form of the whole stack.
package preview

import (
	"strings"

	"github.com/tracekit/stacklook/pkg/frame"
)

const (
	// Placeholder fills a frame slot no capture line was found for.
	Placeholder = "-"

	// Depth is how many topmost frames a preview shows.
	Depth = 3

	// EndOfStack closes a preview that exhausted the capture.
	EndOfStack = "(End of stack)"

	// MoreFrames closes a preview that left frames unshown.
	MoreFrames = "..."

	// NoStack is shown for an owner entry with no capture to preview.
	NoStack = "NO KERNEL STACK ENTRY FOUND"

	stackHeader = "<stack trace >"
	topMarker   = "(top)"
)

// Top extracts up to n frame names from a rendered stack capture,
// skipping the first skip frames. Every slot of the returned slice is
// filled, with Placeholder standing in for frames the capture did not
// have. The boolean reports whether the capture ended within the
// extracted window, so callers can tell "end of stack" from "more frames
// below".
func Top(payload string, skip, n int) ([]string, bool) {
	if n <= 0 {
		return nil, advance(payload, 0, skip) < 0
	}
	out := make([]string, n)
	for i := range out {
		out[i] = Placeholder
	}

	pos := advance(payload, 0, skip)
	if pos < 0 {
		return out, true
	}
	for i := 0; i < n; i++ {
		start := strings.Index(payload[pos:], frame.Marker)
		if start < 0 {
			return out, true
		}
		start += pos

		// The item runs up to the next marker. Searching one byte past
		// the current marker cannot match it again.
		next := strings.Index(payload[start+1:], frame.Marker)
		if next < 0 {
			if f, ok := frame.Parse(payload[start:]); ok {
				out[i] = f.Display()
			}
			return out, true
		}
		next += start + 1
		if f, ok := frame.Parse(payload[start:next]); ok {
			out[i] = f.Display()
		}
		pos = next
	}
	return out, false
}

// advance moves the cursor past skip frame markers and returns it, or -1
// when the payload runs out of markers first.
func advance(payload string, pos, skip int) int {
	for i := 0; i < skip; i++ {
		idx := strings.Index(payload[pos:], frame.Marker)
		if idx < 0 {
			return -1
		}
		pos += idx + 1
	}
	return pos
}

// FormatStack replaces the capture's header line with a "(top)" marker,
// leaving payloads without a header untouched.
func FormatStack(payload string) string {
	if !strings.Contains(payload, stackHeader) {
		return payload
	}
	i := strings.IndexByte(payload, '\n')
	if i < 0 {
		return topMarker
	}
	return topMarker + payload[i:]
}

// Lines splits a formatted capture into list items, one frame per line.
func Lines(payload string) []string {
	return strings.Split(FormatStack(payload), "\n")
}
