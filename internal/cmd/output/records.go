package output

import (
	"io"

	"github.com/OHIF/Viewers-sub030/internal/cmd/table"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

// DisplaySets writes display sets in the requested format.
func DisplaySets(w io.Writer, format Format, sets []*displayset.DisplaySet) error {
	snaps := displayset.Snapshots(sets)
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.DisplaySetsToTableData(snaps, format == FormatWide))
	}
	return NewFormatter(format).Format(w, snaps)
}

// handlerView is the serialized form of a registered builder.
type handlerView struct {
	ID           string   `json:"id" yaml:"id"`
	SOPClassUIDs []string `json:"sopClassUids" yaml:"sopClassUids"`
	Fallback     bool     `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Handlers writes the registered builders in dispatch order.
func Handlers(w io.Writer, format Format, hs []handlers.Handler, fallback handlers.Handler) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.HandlersToTableData(hs, fallback))
	}
	views := make([]handlerView, 0, len(hs)+1)
	for _, h := range hs {
		views = append(views, handlerView{ID: h.ID(), SOPClassUIDs: h.SOPClassUIDs()})
	}
	if fallback != nil {
		views = append(views, handlerView{ID: fallback.ID(), SOPClassUIDs: []string{}, Fallback: true})
	}
	return NewFormatter(format).Format(w, views)
}

// Frames writes synthesized frame records. Structured formats carry every
// attribute; tables summarize geometry.
func Frames(w io.Writer, format Format, frames []instances.Instance) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.FramesToTableData(frames))
	}
	return NewFormatter(format).Format(w, frames)
}
