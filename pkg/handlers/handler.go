// Package handlers defines the builder contract and the ordered registry the
// engine dispatches through.
//
// A builder claims a set of SOP classes and turns a list of instances into
// zero or more display sets. Dispatch is a linear scan in registration order.
package handlers

import (
	"context"
	"slices"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
)

// Handler builds display sets for the SOP classes it claims.
type Handler interface {
	// ID uniquely identifies the builder within a registry.
	ID() string

	// SOPClassUIDs returns the SOP classes the builder claims.
	SOPClassUIDs() []string

	// Build turns the instances into display sets. Records of every
	// returned set count as consumed.
	Build(ctx context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error)
}

// InstanceAdder is implemented by builders able to grow an existing set with
// late-arriving instances. ok reports whether the set absorbed them.
type InstanceAdder interface {
	AddInstances(ctx context.Context, ds *displayset.DisplaySet, insts []instances.Instance) (ok bool, err error)
}

// BuildFunc is the signature of a builder's build operation.
type BuildFunc func(ctx context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error)

// funcHandler adapts a BuildFunc to Handler.
type funcHandler struct {
	id          string
	sopClassUID []string
	build       BuildFunc
}

// Func returns a Handler backed by fn.
func Func(id string, sopClassUIDs []string, fn BuildFunc) Handler {
	return &funcHandler{
		id:          id,
		sopClassUID: slices.Clone(sopClassUIDs),
		build:       fn,
	}
}

func (h *funcHandler) ID() string { return h.id }

func (h *funcHandler) SOPClassUIDs() []string { return slices.Clone(h.sopClassUID) }

func (h *funcHandler) Build(ctx context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
	if h.build == nil {
		return nil, nil
	}
	return h.build(ctx, insts)
}

// Claims reports whether h claims the SOP class.
func Claims(h Handler, sopClassUID string) bool {
	return slices.Contains(h.SOPClassUIDs(), sopClassUID)
}
