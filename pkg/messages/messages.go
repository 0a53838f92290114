// Package messages holds the diagnostic messages builders attach to display
// sets. Messages are informational: they never stop a set from being cached.
package messages

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// Code identifies a series-level quality or compatibility issue.
type Code int

// Diagnostic codes.
const (
	NoValidInstances Code = iota + 1
	NoPositionInformation
	NotReconstructable
	MultiframeNoPixelMeasurements
	MultiframeNoOrientation
	MultiframeNoPositionInformation
	MissingFrames
	IrregularSpacing
	InconsistentDimensions
	InconsistentComponents
	InconsistentOrientations
	InconsistentPositionInformation
)

var codeNames = map[Code]string{
	NoValidInstances:                "NO_VALID_INSTANCES",
	NoPositionInformation:           "NO_POSITION_INFORMATION",
	NotReconstructable:              "NOT_RECONSTRUCTABLE",
	MultiframeNoPixelMeasurements:   "MULTIFRAME_NO_PIXEL_MEASUREMENTS",
	MultiframeNoOrientation:         "MULTIFRAME_NO_ORIENTATION",
	MultiframeNoPositionInformation: "MULTIFRAME_NO_POSITION_INFORMATION",
	MissingFrames:                   "MISSING_FRAMES",
	IrregularSpacing:                "IRREGULAR_SPACING",
	InconsistentDimensions:          "INCONSISTENT_DIMENSIONS",
	InconsistentComponents:          "INCONSISTENT_COMPONENTS",
	InconsistentOrientations:        "INCONSISTENT_ORIENTATIONS",
	InconsistentPositionInformation: "INCONSISTENT_POSITION_INFORMATION",
}

var defaultTexts = map[Code]string{
	NoValidInstances:                "Display set has no valid instances.",
	NoPositionInformation:           "Display set is missing position information.",
	NotReconstructable:              "Display set is not a reconstructable 3D volume.",
	MultiframeNoPixelMeasurements:   "Multi frame display sets do not have pixel measurement information.",
	MultiframeNoOrientation:         "Multi frame display sets do not have orientation information.",
	MultiframeNoPositionInformation: "Multi frame display sets do not have position information.",
	MissingFrames:                   "Display set is missing frames.",
	IrregularSpacing:                "Display set has irregular spacing.",
	InconsistentDimensions:          "Display set has inconsistent dimensions between frames.",
	InconsistentComponents:          "Display set has frames with inconsistent number of components.",
	InconsistentOrientations:        "Display set has frames with inconsistent orientations.",
	InconsistentPositionInformation: "Display set has inconsistent position information.",
}

// Codes returns every defined code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeNames))
	for c := NoValidInstances; c <= InconsistentPositionInformation; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is one of the defined codes.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// String returns the code name, e.g. MISSING_FRAMES.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Text returns the default human-readable text for the code.
func (c Code) Text() string {
	return defaultTexts[c]
}

// MarshalText encodes the code by name.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCode resolves a code name.
func ParseCode(name string) (Code, error) {
	for c, n := range codeNames {
		if n == name {
			return c, nil
		}
	}
	return 0, errors.NewValidationError("code", name, "unknown diagnostic code")
}

// Message is a code with its human-readable text.
type Message struct {
	Code Code   `json:"code" yaml:"code"`
	Text string `json:"text" yaml:"text"`
}

// Ledger is the append-only message list of one display set.
// It is safe for concurrent use.
type Ledger struct {
	mu   sync.RWMutex
	list []Message
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends a message. Without text the code's default text is used.
func (l *Ledger) Add(code Code, text ...string) {
	msg := Message{Code: code, Text: code.Text()}
	if len(text) > 0 && text[0] != "" {
		msg.Text = text[0]
	}
	l.mu.Lock()
	l.list = append(l.list, msg)
	l.mu.Unlock()
}

// Append copies every message of other onto l.
func (l *Ledger) Append(other *Ledger) {
	if other == nil || other == l {
		return
	}
	msgs := other.List()
	l.mu.Lock()
	l.list = append(l.list, msgs...)
	l.mu.Unlock()
}

// Merge appends the messages of other whose code l does not yet carry.
// Existing messages are kept.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil || other == l {
		return
	}
	msgs := other.List()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range msgs {
		if !slices.ContainsFunc(l.list, func(have Message) bool { return have.Code == m.Code }) {
			l.list = append(l.list, m)
		}
	}
}

// IncludesCode reports whether a message with the code was added.
func (l *Ledger) IncludesCode(code Code) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.list {
		if m.Code == code {
			return true
		}
	}
	return false
}

// IncludesAll reports whether every given code is present.
func (l *Ledger) IncludesAll(codes ...Code) bool {
	for _, c := range codes {
		if !l.IncludesCode(c) {
			return false
		}
	}
	return true
}

// Size returns the number of messages.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.list)
}

// List returns a copy of the messages in insertion order.
func (l *Ledger) List() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.list...)
}

// Codes returns the distinct codes present, in first-added order.
func (l *Ledger) Codes() []Code {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[Code]struct{}, len(l.list))
	var out []Code
	for _, m := range l.list {
		if _, ok := seen[m.Code]; ok {
			continue
		}
		seen[m.Code] = struct{}{}
		out = append(out, m.Code)
	}
	return out
}

// MarshalJSON encodes the ledger as its message list.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	list := l.List()
	if list == nil {
		list = []Message{}
	}
	return json.Marshal(list)
}
