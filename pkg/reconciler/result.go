package reconciler

import (
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// GroupResult is the outcome of one input group.
type GroupResult struct {
	// SeriesInstanceUID of the group's first instance.
	SeriesInstanceUID string

	// DisplaySets produced or reused for the group, in dispatch order.
	DisplaySets []*displayset.DisplaySet

	Created int
	Reused  int

	// Unclaimed notes partitions no builder claimed. They are not failures.
	Unclaimed []*errors.HandlerNotFoundError

	// Err is set when a builder failed or a partition was malformed.
	Err error
}

// Result is the outcome of an ingestion call.
type Result struct {
	// DisplaySets aggregates every group's sets in group order.
	DisplaySets []*displayset.DisplaySet

	Groups []GroupResult

	Created int
	Reused  int

	// Invalidated lists sets refined in place by this call.
	Invalidated []string
}

// Err joins the group errors. Nil when every group resolved.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, g := range r.Groups {
		if g.Err != nil {
			errs = append(errs, g.Err)
		}
	}
	return errors.Join(errs...)
}

// Empty reports whether the call produced or reused nothing.
func (r *Result) Empty() bool {
	return r == nil || len(r.DisplaySets) == 0
}

// FailedGroups returns the indexes of groups that failed.
func (r *Result) FailedGroups() []int {
	var out []int
	for i, g := range r.Groups {
		if g.Err != nil {
			out = append(out, i)
		}
	}
	return out
}
