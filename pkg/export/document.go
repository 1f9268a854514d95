// Package export renders annotation sets into documents an external
// renderer can draw from, without the annotator attached.
package export

import (
	"io"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/tracekit/stacklook/internal/timeutil"
	"github.com/tracekit/stacklook/pkg/annotate"
	"github.com/tracekit/stacklook/pkg/config"
	"github.com/tracekit/stacklook/pkg/plot"
	"github.com/tracekit/stacklook/pkg/plugin"
	"github.com/tracekit/stacklook/pkg/preview"
	"github.com/tracekit/stacklook/pkg/stream"
)

// Document is the rendered annotation set for one trace.
type Document struct {
	RunID       string        `json:"run_id"`
	Source      string        `json:"source,omitempty"`
	GeneratedAt timeutil.Time `json:"generated_at"`
	Rows        []Row         `json:"rows"`
	Markers     []MarkerInfo  `json:"markers"`
}

// Row carries the primitives drawn over one graph row.
type Row struct {
	Kind  string     `json:"kind"`
	Value int        `json:"value"`
	Drawn Primitives `json:"drawn"`
}

// Primitives is a batch of drawables in paint order.
type Primitives struct {
	Triangles []plot.Triangle `json:"triangles,omitempty"`
	Labels    []plot.Label    `json:"labels,omitempty"`
}

// MarkerInfo is the structured side of one marker: where it sits and
// what its preview shows.
type MarkerInfo struct {
	Event   string        `json:"event"`
	CPU     int           `json:"cpu"`
	PID     int           `json:"pid"`
	Task    string        `json:"task"`
	TS      int64         `json:"ts_ns"`
	Time    string        `json:"time"`
	Preview preview.Hover `json:"preview"`
}

// NewDocument starts an empty document for the named source.
func NewDocument(source string) *Document {
	return &Document{
		RunID:       uuid.New().String(),
		Source:      source,
		GeneratedAt: timeutil.Time(time.Now().UTC()),
	}
}

// AddRow records the primitives drawn over one row pass.
func (d *Document) AddRow(kind plugin.DrawKind, value int, drawn Primitives) {
	d.Rows = append(d.Rows, Row{Kind: kindName(kind), Value: value, Drawn: drawn})
}

func kindName(kind plugin.DrawKind) string {
	switch kind {
	case plugin.DrawTask:
		return "task"
	case plugin.DrawCPU:
		return "cpu"
	}
	return "unknown"
}

// AddMarkers records the structured side of markers shown on a pass.
// The configuration decides how deep their previews go.
func (d *Document) AddMarkers(cfg *config.Config, markers ...annotate.Marker) {
	for _, m := range markers {
		d.Markers = append(d.Markers, MarkerInfo{
			Event:   m.Event.String(),
			CPU:     m.Owner.CPU(),
			PID:     stream.ResolveTaskID(m.Owner),
			Task:    m.Owner.TaskName(),
			TS:      m.Owner.Timestamp(),
			Time:    timeutil.FormatTrace(m.Owner.Timestamp()),
			Preview: m.Hover(cfg),
		})
	}
}

// Sort orders markers by time, then CPU, so documents for the same
// trace compare stably however the rows were walked.
func (d *Document) Sort() {
	slices.SortFunc(d.Markers, func(a, b MarkerInfo) bool {
		if a.TS != b.TS {
			return a.TS < b.TS
		}
		return a.CPU < b.CPU
	})
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadDocument parses a document written by WriteJSON.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := gojson.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
