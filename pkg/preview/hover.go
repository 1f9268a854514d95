package preview

// Hover is the floating preview shown while the pointer rests on a
// marker: the owning task's name and a handful of lines underneath.
type Hover struct {
	Task  string   `json:"task"`
	Lines []string `json:"lines"`
}

// HoverFor builds the preview for a task's capture: the topmost frames
// past the configured skip, closed by a line telling whether the capture
// ended there or goes on.
func HoverFor(task, payload string, skip int) Hover {
	frames, ended := Top(payload, skip, Depth)
	last := MoreFrames
	if ended {
		last = EndOfStack
	}
	return Hover{Task: task, Lines: append(frames, last)}
}

// Missing builds the preview for an owner entry with no capture.
func Missing(task string) Hover {
	return Hover{Task: task, Lines: []string{NoStack}}
}
