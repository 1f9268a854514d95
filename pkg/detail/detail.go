// Package detail renders the expanded view opened from a marker: the
// full capture for one entry plus a line about what happened to the
// task.
package detail

import (
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/preview"
	"github.com/tracekit/stacklook/pkg/schedstate"
)

// NoInfo is shown when a marker with no capture behind it is expanded
// anyway.
const NoInfo = "ERROR: No info field found!"

// View is the content of an expanded marker, ready for a host window.
type View struct {
	// Title names the task the capture belongs to.
	Title string `json:"title"`

	// Info is a one-line description of what the event did to the task.
	Info string `json:"info"`

	// Stack is the whole capture with its header swapped for a "(top)"
	// marker.
	Stack string `json:"stack"`

	// Lines is Stack split for hosts that render lists instead of text
	// blocks.
	Lines []string `json:"lines"`
}

// New builds the view for an owner entry. ownerPayload is the owner's
// own rendered info, which for sched_switch carries the task's state;
// hasStack is false when no capture was found for the owner.
func New(task string, name event.Name, ownerPayload, stackPayload string, hasStack bool) View {
	v := View{
		Title: "Kernel stack for task '" + task + "':",
		Info:  specificInfo(name, ownerPayload),
	}
	if !hasStack {
		v.Stack = NoInfo
		v.Lines = []string{NoInfo}
		return v
	}
	v.Stack = preview.FormatStack(stackPayload)
	v.Lines = preview.Lines(stackPayload)
	return v
}

func specificInfo(name event.Name, payload string) string {
	switch name {
	case event.SchedSwitch:
		return "Task was in state " + schedstate.LongName(payload) + "."
	case event.SchedWaking:
		return "Task has woken up."
	}
	return "No specific info for event."
}
