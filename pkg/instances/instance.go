// Package instances models raw DICOM instance metadata as delivered by the
// retrieval pipeline and provides the SOP class dictionary the builders
// dispatch on.
package instances

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// Instance is one DICOM object's attribute record keyed by DICOM keyword.
// Values keep the representation they were decoded with; the accessors
// normalize numbers and strings.
type Instance map[string]any

// requiredKeys every instance must carry, checked in this order.
var requiredKeys = []string{
	constants.SOPInstanceUID,
	constants.SeriesInstanceUID,
	constants.StudyInstanceUID,
	constants.SOPClassUID,
}

// Validate reports the first missing required attribute.
func (i Instance) Validate() error {
	for _, key := range requiredKeys {
		if i.String(key) == "" {
			return errors.NewValidationError(key, i[key], "required attribute is missing")
		}
	}
	return nil
}

// Clone returns a shallow copy that can be modified without touching i.
func (i Instance) Clone() Instance {
	if i == nil {
		return nil
	}
	return maps.Clone(i)
}

// Has reports whether the attribute is present.
func (i Instance) Has(key string) bool {
	_, ok := i[key]
	return ok
}

// String returns the attribute as a string. Numbers are formatted, a
// single-element list yields its element, anything else is empty.
func (i Instance) String(key string) string {
	return asString(i[key])
}

// Int returns the attribute as an integer.
func (i Instance) Int(key string) (int, bool) {
	f, ok := asFloat(i[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Float returns the attribute as a float.
func (i Instance) Float(key string) (float64, bool) {
	return asFloat(i[key])
}

// Floats returns a multi-valued numeric attribute such as ImagePositionPatient.
// Backslash-separated strings are accepted. Nil when absent or not numeric.
func (i Instance) Floats(key string) []float64 {
	return asFloats(i[key])
}

// SOPInstanceUID returns the instance UID.
func (i Instance) SOPInstanceUID() string { return i.String(constants.SOPInstanceUID) }

// SeriesInstanceUID returns the series UID.
func (i Instance) SeriesInstanceUID() string { return i.String(constants.SeriesInstanceUID) }

// StudyInstanceUID returns the study UID.
func (i Instance) StudyInstanceUID() string { return i.String(constants.StudyInstanceUID) }

// SOPClassUID returns the SOP class UID.
func (i Instance) SOPClassUID() string { return i.String(constants.SOPClassUID) }

// Modality returns the modality code, e.g. CT.
func (i Instance) Modality() string { return i.String(constants.Modality) }

// InstanceNumber returns the instance number, zero when absent.
func (i Instance) InstanceNumber() int {
	n, _ := i.Int(constants.InstanceNumber)
	return n
}

// NumberOfFrames returns the frame count and whether it was present.
func (i Instance) NumberOfFrames() (int, bool) {
	return i.Int(constants.NumberOfFrames)
}

// Container is anything holding instances, typically a display set.
type Container interface {
	Instances() []Instance
}

// SOPInstanceUIDs returns the set of SOPInstanceUIDs held by the containers.
func SOPInstanceUIDs(containers ...Container) map[string]struct{} {
	uids := make(map[string]struct{})
	for _, c := range containers {
		if c == nil {
			continue
		}
		for _, inst := range c.Instances() {
			if uid := inst.SOPInstanceUID(); uid != "" {
				uids[uid] = struct{}{}
			}
		}
	}
	return uids
}

// FilterNotIn returns the instances whose SOPInstanceUID is not already held
// by any of the containers. Order is preserved.
func FilterNotIn(insts []Instance, containers ...Container) []Instance {
	present := SOPInstanceUIDs(containers...)
	if len(present) == 0 {
		return insts
	}
	out := make([]Instance, 0, len(insts))
	for _, inst := range insts {
		if _, ok := present[inst.SOPInstanceUID()]; !ok {
			out = append(out, inst)
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 1 {
			return asString(t[0])
		}
		return ""
	case []string:
		if len(t) == 1 {
			return t[0]
		}
		return ""
	case bool:
		return strconv.FormatBool(t)
	default:
		if f, ok := asFloat(t); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case []any:
		if len(t) == 1 {
			return asFloat(t[0])
		}
	}
	return 0, false
}

func asFloats(v any) []float64 {
	var items []any
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		items = t
	case []float64:
		return append([]float64(nil), t...)
	case string:
		for _, part := range strings.Split(t, `\`) {
			items = append(items, part)
		}
	default:
		items = []any{t}
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := asFloat(item)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}
