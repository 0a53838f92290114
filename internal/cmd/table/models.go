// Package table converts engine records into rows for CLI output.
package table

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// DisplaySetsToTableData converts display set snapshots to table format.
func DisplaySetsToTableData(sets []displayset.Snapshot, wide bool) Data {
	headers := []string{"UID", "Series", "Modality", "Handler", "Instances", "Loaded", "Messages"}
	align := []Align{AlignLeft, AlignLeft, AlignCenter, AlignLeft, AlignRight, AlignCenter, AlignLeft}
	if wide {
		headers = append(headers, "Study", "Description", "Provisional", "Client")
		align = append(align, AlignLeft, AlignLeft, AlignCenter, AlignCenter)
	}

	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		row := []string{
			s.DisplaySetInstanceUID,
			s.SeriesInstanceUID,
			dash(s.Modality),
			s.HandlerID,
			strconv.Itoa(s.NumInstances),
			check(s.IsLoaded),
			MessagesString(s.Messages),
		}
		if wide {
			row = append(row,
				s.StudyInstanceUID,
				dash(s.SeriesDescription),
				check(s.Provisional),
				check(s.MadeInClient),
			)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// HandlersToTableData lists builders in dispatch order.
func HandlersToTableData(hs []handlers.Handler, fallback handlers.Handler) Data {
	rows := make([][]string, 0, len(hs)+1)
	for i, h := range hs {
		rows = append(rows, []string{strconv.Itoa(i + 1), h.ID(), strconv.Itoa(len(h.SOPClassUIDs())), "-"})
	}
	if fallback != nil {
		rows = append(rows, []string{"-", fallback.ID(), "*", "fallback"})
	}
	return Data{
		Headers:         []string{"#", "ID", "SOP Classes", "Role"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignRight, AlignLeft},
	}
}

// FramesToTableData summarizes synthesized frame records.
func FramesToTableData(frames []instances.Instance) Data {
	rows := make([][]string, 0, len(frames))
	for i, f := range frames {
		number := strconv.Itoa(i + 1)
		if n, ok := f.Int("frameNumber"); ok {
			number = strconv.Itoa(n)
		}
		rows = append(rows, []string{
			number,
			f.SOPInstanceUID(),
			floats(f.Floats("ImagePositionPatient")),
			floats(f.Floats("PixelSpacing")),
		})
	}
	return Data{
		Headers:         []string{"Frame", "SOP Instance", "Position", "Spacing"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// MessagesString renders message codes as title-cased words.
func MessagesString(msgs []messages.Message) string {
	if len(msgs) == 0 {
		return "-"
	}
	caser := cases.Title(language.English)
	names := make([]string, 0, len(msgs))
	for _, m := range msgs {
		names = append(names, caser.String(strings.ReplaceAll(m.Code.String(), "_", " ")))
	}
	return strings.Join(names, ", ")
}

func floats(v []float64) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', 6, 64)
	}
	return strings.Join(parts, `\`)
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
