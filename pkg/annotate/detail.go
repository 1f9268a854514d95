package annotate

import "github.com/tracekit/stacklook/pkg/detail"

// Detail builds the expanded view opened by activating the marker.
func (m Marker) Detail() detail.View {
	var payload string
	hasStack := m.Stack != nil
	if hasStack {
		payload = m.Stack.Payload()
	}
	return detail.New(m.Owner.TaskName(), m.Event, m.Owner.Payload(), payload, hasStack)
}
