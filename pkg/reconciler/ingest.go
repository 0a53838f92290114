package reconciler

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/OHIF/Viewers-sub030/internal/arena"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
)

// MakeDisplaySets ingests the instances of one series.
//
// The only error returned is a StructuralInputError, raised before any state
// changes. Builder failures are reported on the result's groups.
func (s *Service) MakeDisplaySets(ctx context.Context, insts []instances.Instance, opts ...MakeOption) (*Result, error) {
	if len(insts) == 0 {
		return nil, errors.NewStructuralInputError(false, "input is empty")
	}
	return s.ingest(ctx, [][]instances.Instance{insts}, newIngestOptions(false, opts))
}

// MakeDisplaySetsBatch ingests one instance list per series. Groups resolve
// concurrently and independently: a failing group never affects the others.
func (s *Service) MakeDisplaySetsBatch(ctx context.Context, groups [][]instances.Instance, opts ...MakeOption) (*Result, error) {
	if len(groups) == 0 {
		return nil, errors.NewStructuralInputError(true, "input is empty")
	}
	if len(groups[0]) == 0 {
		return nil, errors.NewStructuralInputError(true, "first group is empty")
	}
	return s.ingest(ctx, groups, newIngestOptions(true, opts))
}

// groupOutcome is what one group contributes beyond its GroupResult.
type groupOutcome struct {
	GroupResult
	activated   bool
	invalidated []string
}

func (s *Service) ingest(ctx context.Context, groups [][]instances.Instance, opts IngestOptions) (*Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "reconciler.MakeDisplaySets")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("batch", opts.Batch),
		attribute.Int("groups", len(groups)),
	)
	ctx = logging.WithOperation(s.withLogger(ctx), "make_display_sets")

	outcomes := make([]groupOutcome, len(groups))
	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.resolveGroup(ctx, group, opts)
		}()
	}
	wg.Wait()

	result := &Result{Groups: make([]GroupResult, 0, len(outcomes))}
	added := make([][]*displayset.DisplaySet, 0, len(outcomes))
	activated := false
	for _, out := range outcomes {
		result.Groups = append(result.Groups, out.GroupResult)
		result.DisplaySets = append(result.DisplaySets, out.DisplaySets...)
		result.Created += out.Created
		result.Reused += out.Reused
		result.Invalidated = append(result.Invalidated, out.invalidated...)
		added = append(added, out.DisplaySets)
		activated = activated || out.activated
	}
	s.recordSizes()

	for _, uid := range result.Invalidated {
		s.metrics.Invalidated()
		s.bus.Publish(events.SeriesMetadataInvalidated, InvalidatedPayload{
			DisplaySetInstanceUID: uid,
			InvalidateData:        true,
		})
	}
	if activated {
		s.publishChanged()
	}
	if len(result.DisplaySets) > 0 {
		s.bus.Publish(events.DisplaySetsAdded, AddedPayload{Groups: added, Options: opts})
	}

	err := result.Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group failure")
	}
	span.SetAttributes(
		attribute.Int("created", result.Created),
		attribute.Int("reused", result.Reused),
	)
	s.metrics.ObserveIngest(opts.Batch, err, time.Since(start))

	logging.FromContext(ctx).Debug().
		Bool("batch", opts.Batch).
		Int("groups", len(groups)).
		Int("created", result.Created).
		Int("reused", result.Reused).
		Int("failed_groups", len(result.FailedGroups())).
		Dur("elapsed", time.Since(start)).
		Msg("Ingestion complete")

	return result, nil
}

// resolveGroup runs every SOP class partition of one series group.
func (s *Service) resolveGroup(ctx context.Context, group []instances.Instance, opts IngestOptions) (out groupOutcome) {
	if len(group) == 0 {
		return out
	}
	series := group[0].SeriesInstanceUID()
	out.SeriesInstanceUID = series

	defer func() {
		if r := recover(); r != nil {
			out.Err = errors.Join(out.Err, errors.NewHandlerError("", series, fmt.Errorf("panic: %v", r)))
			s.metrics.GroupFailed("panic")
		}
	}()

	unlock := s.locks.lock(series)
	defer unlock()

	ctx = logging.WithSeries(ctx, series)
	for _, part := range partition(group) {
		s.resolvePartition(ctx, series, part, opts, &out)
	}
	if out.Err != nil {
		logging.FromContext(ctx).Warn().Err(out.Err).Msg("Series group failed")
	}
	return out
}

// partition splits a group by SOPClassUID in first-appearance order.
func partition(group []instances.Instance) [][]instances.Instance {
	index := make(map[string]int)
	var parts [][]instances.Instance
	for _, inst := range group {
		class := inst.SOPClassUID()
		i, ok := index[class]
		if !ok {
			i = len(parts)
			index[class] = i
			parts = append(parts, nil)
		}
		parts[i] = append(parts[i], inst)
	}
	return parts
}

func (s *Service) resolvePartition(ctx context.Context, series string, part []instances.Instance, opts IngestOptions, out *groupOutcome) {
	rep := part[0]
	if rep.SeriesInstanceUID() == "" || rep.SOPClassUID() == "" {
		field := "SeriesInstanceUID"
		if rep.SeriesInstanceUID() != "" {
			field = "SOPClassUID"
		}
		err := errors.NewValidationError(field, nil, "representative instance is missing the attribute")
		out.Err = errors.Join(out.Err, errors.NewHandlerError("", series, err))
		s.metrics.GroupFailed("malformed")
		return
	}

	candidates := s.registry.Matching(rep.SOPClassUID())
	if len(candidates) == 0 {
		logging.FromContext(ctx).Debug().
			Str("sop_class_uid", rep.SOPClassUID()).
			Int("instances", len(part)).
			Msg("No handler claims the SOP class, skipping")
		s.metrics.Unclaimed(rep.SOPClassUID())
		out.Unclaimed = append(out.Unclaimed, errors.NewHandlerNotFoundError(series, rep.SOPClassUID()))
		if s.fallback != nil {
			s.dispatch(ctx, series, part, part, []handlers.Handler{s.fallback}, opts, out)
		}
		return
	}

	before := len(out.DisplaySets)
	pool, ok := s.dispatch(ctx, series, part, part, candidates, opts, out)
	if !ok || s.fallback == nil || len(pool) == 0 || len(out.DisplaySets) > before {
		return
	}
	// claimed but nothing produced
	logging.FromContext(ctx).Debug().
		Str("sop_class_uid", rep.SOPClassUID()).
		Int("instances", len(pool)).
		Msg("Claiming handlers produced nothing, using fallback")
	s.dispatch(ctx, series, part, pool, []handlers.Handler{s.fallback}, opts, out)
}

// dispatch offers pool to each handler in order while instances remain. It
// returns what is left and false when a handler failed the group.
func (s *Service) dispatch(ctx context.Context, series string, part, pool []instances.Instance, candidates []handlers.Handler, opts IngestOptions, out *groupOutcome) ([]instances.Instance, bool) {
	for _, h := range candidates {
		if len(pool) == 0 {
			break
		}
		hctx := logging.WithHandler(ctx, h.ID())

		var err error
		if pool, err = s.reuse(hctx, h, series, part, pool, opts, out); err != nil {
			out.Err = errors.Join(out.Err, err)
			s.metrics.GroupFailed("handler")
			return pool, false
		}
		if len(pool) == 0 {
			break
		}

		sets, err := s.invoke(hctx, h, series, pool)
		if err != nil {
			out.Err = errors.Join(out.Err, err)
			s.metrics.GroupFailed("handler")
			return pool, false
		}
		s.admit(h, sets, opts, out)
		if anyProvisional(sets) {
			s.arena.Retain(arena.Key(series, h.ID()), consumed(pool, sets))
		}
		pool = instances.FilterNotIn(pool, displayset.Containers(sets)...)
	}
	return pool, true
}

// reuse activates the cached sets of (series, h), refining provisional ones
// and letting h absorb what it can. It returns the instances still unconsumed.
func (s *Service) reuse(ctx context.Context, h handlers.Handler, series string, part, pool []instances.Instance, opts IngestOptions, out *groupOutcome) ([]instances.Instance, error) {
	mine := s.cachedFor(series, h.ID())
	if len(mine) == 0 {
		return pool, nil
	}

	created, err := s.refine(ctx, h, series, mine, part, opts, out)
	if err != nil {
		return pool, err
	}
	mine = append(mine, created...)
	pool = instances.FilterNotIn(pool, displayset.Containers(mine)...)

	if adder, ok := h.(handlers.InstanceAdder); ok && len(pool) > 0 {
		for _, ds := range mine {
			if len(pool) == 0 {
				break
			}
			grown, err := s.addInstances(ctx, adder, h.ID(), series, ds, pool)
			if err != nil {
				return pool, err
			}
			if grown {
				out.invalidated = appendUnique(out.invalidated, ds.UID())
				pool = instances.FilterNotIn(pool, ds)
			}
		}
	}

	var reused []*displayset.DisplaySet
	for _, ds := range mine[:len(mine)-len(created)] {
		if !slices.Contains(out.DisplaySets, ds) {
			reused = append(reused, ds)
		}
	}
	if s.store.Activate(reused...) {
		out.activated = true
	}
	out.DisplaySets = append(out.DisplaySets, reused...)
	out.Reused += len(reused)
	s.metrics.Reused(h.ID(), len(reused))
	return pool, nil
}

// refine rebuilds the provisional sets of (series, h) from everything the
// arena holds once new or corrected instances arrive. Cached sets are refined
// in place; rebuilt sets matching no cached set are admitted as new.
func (s *Service) refine(ctx context.Context, h handlers.Handler, series string, mine []*displayset.DisplaySet, part []instances.Instance, opts IngestOptions, out *groupOutcome) ([]*displayset.DisplaySet, error) {
	var provisional []*displayset.DisplaySet
	for _, ds := range mine {
		if ds.Provisional() {
			provisional = append(provisional, ds)
		}
	}
	if len(provisional) == 0 {
		return nil, nil
	}

	key := arena.Key(series, h.ID())
	held := s.arena.Retain(key, part)
	source := held.Instances
	switch {
	case held.Fresh:
		// The earlier data expired. Only instances already behind a
		// provisional set can be rebuilt whole; the rest grow through
		// InstanceAdder.
		source = consumed(part, provisional)
		if len(source) == 0 {
			return nil, nil
		}
	case !held.Changed:
		return nil, nil
	}

	rebuilt, err := s.invoke(ctx, h, series, source)
	if err != nil {
		return nil, err
	}

	var fresh []*displayset.DisplaySet
	for _, r := range rebuilt {
		target := overlapping(mine, r)
		switch {
		case target == nil:
			if !held.Fresh {
				fresh = append(fresh, r)
			}
		case target.Provisional() && covers(r, target) && !sameRecords(r, target):
			target.Refine(r)
			out.invalidated = appendUnique(out.invalidated, target.UID())
			logging.FromContext(ctx).Debug().
				Str("display_set_uid", target.UID()).
				Bool("provisional", target.Provisional()).
				Msg("Provisional display set refined")
		}
	}

	created := s.admit(h, fresh, opts, out)
	if !anyProvisional(mine) && !anyProvisional(created) {
		s.arena.Release(key)
	}
	return created, nil
}

// admit stamps, caches and activates freshly built sets.
func (s *Service) admit(h handlers.Handler, sets []*displayset.DisplaySet, opts IngestOptions, out *groupOutcome) []*displayset.DisplaySet {
	var admitted []*displayset.DisplaySet
	for _, ds := range sets {
		ds.HandlerID = h.ID()
		ds.MadeInClient = opts.MadeInClient
		ds.MergeSettings(opts.Settings)
		if s.store.Insert(ds) {
			admitted = append(admitted, ds)
		}
	}
	if s.store.Activate(admitted...) {
		out.activated = true
	}
	out.DisplaySets = append(out.DisplaySets, admitted...)
	out.Created += len(admitted)
	s.metrics.Created(h.ID(), len(admitted))
	return admitted
}

// invoke calls the builder, turning errors and panics into HandlerErrors.
func (s *Service) invoke(ctx context.Context, h handlers.Handler, series string, pool []instances.Instance) (sets []*displayset.DisplaySet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sets, err = nil, errors.NewHandlerError(h.ID(), series, fmt.Errorf("panic: %v", r))
		}
	}()

	built, err := h.Build(ctx, pool)
	if err != nil {
		return nil, errors.WrapHandler(h.ID(), series, err)
	}
	for _, ds := range built {
		if ds != nil {
			sets = append(sets, ds)
		}
	}
	return sets, nil
}

func (s *Service) addInstances(ctx context.Context, adder handlers.InstanceAdder, id, series string, ds *displayset.DisplaySet, pool []instances.Instance) (grown bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			grown, err = false, errors.NewHandlerError(id, series, fmt.Errorf("panic: %v", r))
		}
	}()
	grown, err = adder.AddInstances(ctx, ds, pool)
	if err != nil {
		return false, errors.WrapHandler(id, series, err)
	}
	return grown, nil
}

func (s *Service) cachedFor(series, handlerID string) []*displayset.DisplaySet {
	return s.store.Filter(func(ds *displayset.DisplaySet) bool {
		return ds.SeriesInstanceUID == series && ds.HandlerID == handlerID
	})
}

// overlapping returns the first set sharing a SOPInstanceUID with r.
func overlapping(sets []*displayset.DisplaySet, r *displayset.DisplaySet) *displayset.DisplaySet {
	for _, uid := range r.SOPInstanceUIDs() {
		for _, ds := range sets {
			if ds.HasSOPInstanceUID(uid) {
				return ds
			}
		}
	}
	return nil
}

// covers reports whether r holds every SOPInstanceUID of target, so that
// refining target from r loses nothing.
func covers(r, target *displayset.DisplaySet) bool {
	for _, uid := range target.SOPInstanceUIDs() {
		if !r.HasSOPInstanceUID(uid) {
			return false
		}
	}
	return true
}

func sameRecords(r, target *displayset.DisplaySet) bool {
	return reflect.DeepEqual(r.Instances(), target.Instances()) && r.Provisional() == target.Provisional()
}

// consumed returns the pool instances held by the sets.
func consumed(pool []instances.Instance, sets []*displayset.DisplaySet) []instances.Instance {
	held := instances.SOPInstanceUIDs(displayset.Containers(sets)...)
	var out []instances.Instance
	for _, inst := range pool {
		if _, ok := held[inst.SOPInstanceUID()]; ok {
			out = append(out, inst)
		}
	}
	return out
}

func anyProvisional(sets []*displayset.DisplaySet) bool {
	for _, ds := range sets {
		if ds.Provisional() {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
