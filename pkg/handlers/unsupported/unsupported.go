// Package unsupported provides the fallback builder used for instance
// partitions no registered builder claims. It claims no SOP class itself, so
// it is never picked by normal dispatch.
package unsupported

import (
	"context"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

// DefaultID is the fallback builder id.
const DefaultID = "unsupported"

// Builder wraps unclaimed instances in a single set flagged Unsupported.
type Builder struct {
	id string
}

var _ handlers.Handler = (*Builder)(nil)

// New returns the fallback builder.
func New() *Builder {
	return &Builder{id: DefaultID}
}

// ID implements handlers.Handler.
func (b *Builder) ID() string { return b.id }

// SOPClassUIDs implements handlers.Handler. It is always empty.
func (b *Builder) SOPClassUIDs() []string { return nil }

// Build implements handlers.Handler.
func (b *Builder) Build(_ context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
	if len(insts) == 0 {
		return nil, errors.NewValidationError("instances", nil, "no instances were provided")
	}
	ds := displayset.New(insts)
	ds.Unsupported = true
	ds.SetLoaded(true)
	return []*displayset.DisplaySet{ds}, nil
}
