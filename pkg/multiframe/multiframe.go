// Package multiframe expands multi-frame instances into one record per frame.
//
// A frame record starts from the base instance without its multi-frame-only
// attributes, then takes the shared functional groups and finally the
// per-frame functional group for that frame, later sources winning.
package multiframe

import (
	"maps"
	"slices"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

// multiframeOnly are the attributes no frame record keeps.
var multiframeOnly = []string{
	constants.NumberOfFrames,
	constants.SharedFunctionalGroupsSequence,
	constants.PerFrameFunctionalGroupsSequence,
}

// IsMultiframe reports whether Synthesize would expand the instance.
func IsMultiframe(inst instances.Instance) bool {
	return frameCount(inst) > 0
}

// Synthesize returns one record per frame, numbered 1..N. Instances that are
// not multi-frame are returned unchanged as a single-element slice.
func Synthesize(inst instances.Instance) []instances.Instance {
	n := frameCount(inst)
	if n == 0 {
		return []instances.Instance{inst}
	}

	base := baseRecord(inst)
	shared := flatten(firstItem(inst[constants.SharedFunctionalGroupsSequence]))
	perFrame := items(inst[constants.PerFrameFunctionalGroupsSequence])

	frames := make([]instances.Instance, 0, n)
	for f := 1; f <= n; f++ {
		frames = append(frames, frame(base, shared, perFrame, f))
	}
	return frames
}

// Frame returns the record for frame f (1-based). ok is false when the
// instance is not multi-frame or f is out of range.
func Frame(inst instances.Instance, f int) (instances.Instance, bool) {
	n := frameCount(inst)
	if n == 0 || f < 1 || f > n {
		return nil, false
	}
	shared := flatten(firstItem(inst[constants.SharedFunctionalGroupsSequence]))
	perFrame := items(inst[constants.PerFrameFunctionalGroupsSequence])
	return frame(baseRecord(inst), shared, perFrame, f), true
}

func frame(base, shared instances.Instance, perFrame []map[string]any, f int) instances.Instance {
	rec := base.Clone()
	mergeSorted(rec, shared)
	if f-1 < len(perFrame) {
		mergeSorted(rec, flatten(perFrame[f-1]))
	}
	rec[constants.FrameNumber] = f
	return rec
}

// PerFrameCount returns the number of per-frame functional group items.
func PerFrameCount(inst instances.Instance) int {
	return len(items(inst[constants.PerFrameFunctionalGroupsSequence]))
}

// frameCount is zero when synthesis does not apply.
func frameCount(inst instances.Instance) int {
	n, hasCount := inst.NumberOfFrames()
	perFrame := items(inst[constants.PerFrameFunctionalGroupsSequence])
	if !hasCount {
		n = len(perFrame)
	}
	if n <= 1 && len(perFrame) == 0 {
		return 0
	}
	if n < 1 {
		return 0
	}
	if n > constants.MaxNumberOfFrames {
		n = min(len(perFrame), constants.MaxNumberOfFrames)
		if n == 0 {
			n = constants.MaxNumberOfFrames
		}
	}
	return n
}

func baseRecord(inst instances.Instance) instances.Instance {
	base := inst.Clone()
	for _, key := range multiframeOnly {
		delete(base, key)
	}
	return base
}

// flatten lifts functional group macros one level: a macro sequence
// contributes its first item's attributes, a plain attribute is kept.
func flatten(group map[string]any) instances.Instance {
	out := make(instances.Instance, len(group))
	for _, key := range slices.Sorted(maps.Keys(group)) {
		value := group[key]
		if macro := firstItem(value); macro != nil && isSequence(value) {
			mergeSorted(out, macro)
			continue
		}
		out[key] = value
	}
	return out
}

func mergeSorted(dst instances.Instance, src map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(src)) {
		dst[key] = src[key]
	}
}

func isSequence(v any) bool {
	switch t := v.(type) {
	case map[string]any, instances.Instance, []map[string]any:
		return true
	case []any:
		return len(t) > 0 && asMap(t[0]) != nil
	}
	return false
}

func firstItem(v any) map[string]any {
	list := items(v)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// items accepts a single item mapping or a list of item mappings.
func items(v any) []map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case []map[string]any:
		return t
	case []instances.Instance:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m := asMap(item); m != nil {
				out = append(out, m)
			}
		}
		return out
	default:
		if m := asMap(t); m != nil {
			return []map[string]any{m}
		}
		return nil
	}
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case instances.Instance:
		return t
	}
	return nil
}
