package instances

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// Decode parses a JSON or YAML document of instance records.
//
// Without batch the document is a list of instances (a single mapping is
// accepted as a one-instance list) and exactly one group is returned. With
// batch the document is a list of such lists, one per series.
//
// Only an empty document, or a batch whose first element is not a non-empty
// list, is a StructuralInputError. A later batch element that is not a list
// and an entry that is not a mapping still decode: they become records the
// engine rejects as malformed, failing that group alone.
func Decode(data []byte, batch bool) ([][]Instance, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewStructuralInputError(batch, "input is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}

	if !batch {
		group, err := decodeGroup(doc)
		if err != nil {
			return nil, err
		}
		if len(group) == 0 {
			return nil, errors.NewStructuralInputError(false, "input is empty")
		}
		return [][]Instance{group}, nil
	}

	list, ok := doc.([]any)
	if !ok || len(list) == 0 {
		return nil, errors.NewStructuralInputError(true, "input must be a non-empty list of instance lists")
	}
	first, ok := list[0].([]any)
	if !ok {
		return nil, errors.NewStructuralInputError(true, "first element is not a list")
	}
	if len(first) == 0 {
		return nil, errors.NewStructuralInputError(true, "first group is empty")
	}

	groups := make([][]Instance, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case nil:
			groups = append(groups, nil)
		case []any:
			groups = append(groups, decodeList(t))
		default:
			groups = append(groups, []Instance{asInstance(t)})
		}
	}
	return groups, nil
}

func decodeGroup(doc any) ([]Instance, error) {
	switch t := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return decodeList(t), nil
	default:
		if m, ok := normalize(t).(map[string]any); ok {
			return []Instance{m}, nil
		}
		return nil, errors.NewValidationError("", doc, "document must be a list of instances")
	}
}

func decodeList(items []any) []Instance {
	group := make([]Instance, 0, len(items))
	for _, item := range items {
		group = append(group, asInstance(item))
	}
	return group
}

// asInstance keeps a mapping. Anything else becomes an empty record.
func asInstance(v any) Instance {
	if m, ok := normalize(v).(map[string]any); ok {
		return Instance(m)
	}
	return Instance{}
}

// normalize converts YAML mappings with non-string keys into string-keyed maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for idx, item := range t {
			t[idx] = normalize(item)
		}
		return t
	default:
		return v
	}
}
