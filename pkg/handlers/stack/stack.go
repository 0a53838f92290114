// Package stack is the built-in image builder. Multi-frame instances and
// single-image modalities get a display set each; the remaining images of a
// group form one stack ordered by InstanceNumber.
package stack

import (
	"context"
	"slices"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/messages"
	"github.com/OHIF/Viewers-sub030/pkg/multiframe"
)

// DefaultID is the builder id used when none is configured.
const DefaultID = "stack"

// Builder builds image display sets.
type Builder struct {
	id         string
	sopClasses []string
}

var (
	_ handlers.Handler       = (*Builder)(nil)
	_ handlers.InstanceAdder = (*Builder)(nil)
)

// Option configures a Builder.
type Option func(*Builder)

// WithID overrides the builder id.
func WithID(id string) Option {
	return func(b *Builder) {
		b.id = id
	}
}

// WithSOPClassUIDs overrides the claimed SOP classes.
func WithSOPClassUIDs(uids ...string) Option {
	return func(b *Builder) {
		b.sopClasses = slices.Clone(uids)
	}
}

// New returns a builder claiming every image storage SOP class.
func New(opts ...Option) *Builder {
	b := &Builder{
		id:         DefaultID,
		sopClasses: instances.ImageSOPClasses(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID implements handlers.Handler.
func (b *Builder) ID() string { return b.id }

// SOPClassUIDs implements handlers.Handler.
func (b *Builder) SOPClassUIDs() []string { return slices.Clone(b.sopClasses) }

// Build implements handlers.Handler.
func (b *Builder) Build(ctx context.Context, insts []instances.Instance) ([]*displayset.DisplaySet, error) {
	if len(insts) == 0 {
		return nil, errors.NewValidationError("instances", nil, "no instances were provided")
	}

	var (
		sets      []*displayset.DisplaySet
		stackable []instances.Instance
	)
	for _, inst := range insts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// imaging objects carry an image SOP class or at least Rows
		if !instances.IsImage(inst.SOPClassUID()) && !inst.Has(constants.Rows) {
			continue
		}
		switch {
		case multiframe.IsMultiframe(inst):
			sets = append(sets, multiframeSet(inst))
		case isSingleImageModality(inst.Modality()):
			sets = append(sets, displayset.New([]instances.Instance{inst}))
		default:
			stackable = append(stackable, inst)
		}
	}

	if len(stackable) > 0 {
		sortByInstanceNumber(stackable)
		ds := displayset.New(stackable)
		assess(ds.Messages, stackable)
		ds.SetProvisional(missingInstances(ds.Messages, stackable))
		sets = append(sets, ds)
	}
	return sets, nil
}

// AddInstances grows a stack with late-arriving images of the same series.
// Multi-frame and single-image sets are never grown.
func (b *Builder) AddInstances(ctx context.Context, ds *displayset.DisplaySet, insts []instances.Instance) (bool, error) {
	if ds == nil || ds.HandlerID != b.id || !growable(ds) {
		return false, nil
	}

	var absorbed []instances.Instance
	for _, inst := range insts {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if inst.SeriesInstanceUID() != ds.SeriesInstanceUID ||
			!instances.IsImage(inst.SOPClassUID()) ||
			multiframe.IsMultiframe(inst) ||
			isSingleImageModality(inst.Modality()) {
			continue
		}
		absorbed = append(absorbed, inst)
	}
	if len(absorbed) == 0 {
		return false, nil
	}

	all := append(ds.Instances(), absorbed...)
	sortByInstanceNumber(all)
	ds.SetInstances(all)

	fresh := messages.NewLedger()
	assess(fresh, all)
	provisional := missingInstances(fresh, all)
	ds.Messages.Merge(fresh)
	ds.SetProvisional(provisional)
	return true, nil
}

func multiframeSet(inst instances.Instance) *displayset.DisplaySet {
	frames := multiframe.Synthesize(inst)
	ds := displayset.New(frames)

	declared, hasCount := inst.NumberOfFrames()
	if perFrame := multiframe.PerFrameCount(inst); hasCount && perFrame > 0 && perFrame < declared {
		ds.Messages.Add(messages.MissingFrames)
		ds.SetProvisional(true)
	}

	first := frames[0]
	if !first.Has(constants.PixelSpacing) {
		ds.Messages.Add(messages.MultiframeNoPixelMeasurements)
	}
	if !first.Has(constants.ImageOrientationPatient) {
		ds.Messages.Add(messages.MultiframeNoOrientation)
	}
	if !first.Has(constants.ImagePositionPatient) {
		ds.Messages.Add(messages.MultiframeNoPositionInformation)
		return ds
	}
	if !ds.Provisional() {
		assess(ds.Messages, frames)
	}
	return ds
}

func isSingleImageModality(modality string) bool {
	return modality == "CR" || modality == "MG" || modality == "DX"
}

func growable(ds *displayset.DisplaySet) bool {
	if isSingleImageModality(ds.Modality) {
		return false
	}
	recs := ds.Instances()
	return len(recs) > 0 && !recs[0].Has(constants.FrameNumber)
}

func sortByInstanceNumber(insts []instances.Instance) {
	slices.SortStableFunc(insts, func(a, b instances.Instance) int {
		return a.InstanceNumber() - b.InstanceNumber()
	})
}

// missingInstances flags stacks smaller than the series-related count the
// first instance announces.
func missingInstances(ledger *messages.Ledger, recs []instances.Instance) bool {
	expected, ok := recs[0].Int(constants.NumberOfSeriesRelatedInstances)
	if !ok || expected <= len(recs) {
		return false
	}
	if !ledger.IncludesCode(messages.MissingFrames) {
		ledger.Add(messages.MissingFrames)
	}
	return true
}
