// Package reconciler is the ingestion entry point of the display-set engine.
//
// A Service owns one viewing session's state: the handler registry, the
// display-set store, the change notifier, and the arena of raw instances
// kept for provisional sets. Raw instance groups go in through
// MakeDisplaySets; display sets come out through the query operations and
// event subscriptions.
package reconciler

import (
	"cmp"
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/OHIF/Viewers-sub030/internal/arena"
	"github.com/OHIF/Viewers-sub030/internal/metrics"
	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
	"github.com/OHIF/Viewers-sub030/pkg/store"
)

const tracerName = "github.com/OHIF/Viewers-sub030/pkg/reconciler"

// Service reconciles raw instances into cached display sets.
// It is safe for concurrent use.
type Service struct {
	registry *handlers.Registry
	store    *store.Store
	bus      *events.Bus
	arena    *arena.Arena
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *zerolog.Logger
	fallback handlers.Handler
	locks    *seriesLocks
}

// New creates a session-scoped service.
func New(opts ...Option) (*Service, error) {
	o, err := (&options{}).apply(opts...)
	if err != nil {
		return nil, err
	}

	logger := logging.OrDefault(o.logger)
	if o.registry == nil {
		o.registry, _ = handlers.NewRegistry()
	}
	for _, h := range o.handlers {
		if err := o.registry.Register(h); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store = store.New()
	}
	if o.bus == nil {
		o.bus = events.NewBus(logger)
	}
	if o.arena == nil {
		o.arena = arena.New(constants.DefaultArenaTTL, constants.DefaultArenaCleanup)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return &Service{
		registry: o.registry,
		store:    o.store,
		bus:      o.bus,
		arena:    o.arena,
		metrics:  o.metrics,
		tracer:   o.tracer,
		logger:   logger,
		fallback: o.fallback,
		locks:    newSeriesLocks(),
	}, nil
}

// RegisterHandler appends a builder to the registry.
func (s *Service) RegisterHandler(h handlers.Handler) error {
	return s.registry.Register(h)
}

// Handlers returns the registered builders in dispatch order.
func (s *Service) Handlers() []handlers.Handler {
	return s.registry.List()
}

// Fallback returns the builder used for unclaimed partitions, if any.
func (s *Service) Fallback() (handlers.Handler, bool) {
	return s.fallback, s.fallback != nil
}

// Subscribe registers cb for events of kind.
func (s *Service) Subscribe(kind events.Kind, cb events.Callback) events.Subscription {
	return s.bus.Subscribe(kind, cb)
}

// SubscribeAll registers cb for every event kind.
func (s *Service) SubscribeAll(cb events.Callback) events.Subscription {
	return s.bus.SubscribeAll(cb)
}

// DisplaySetsForSeries returns the cached sets of the series.
func (s *Service) DisplaySetsForSeries(seriesUID string) []*displayset.DisplaySet {
	return s.store.ForSeries(seriesUID)
}

// DisplaySetByUID returns the cached set with the displaySetInstanceUID.
func (s *Service) DisplaySetByUID(uid string) (*displayset.DisplaySet, bool) {
	return s.store.Get(uid)
}

// ActiveDisplaySets returns the active working set.
func (s *Service) ActiveDisplaySets() []*displayset.DisplaySet {
	return s.store.Active()
}

// AllDisplaySets returns every cached set.
func (s *Service) AllDisplaySets() []*displayset.DisplaySet {
	return s.store.All()
}

// DisplaySetForSOPInstanceUID returns the set holding the instance, active
// sets first.
func (s *Service) DisplaySetForSOPInstanceUID(sopInstanceUID string) (*displayset.DisplaySet, bool) {
	return s.store.FindBySOPInstanceUID(sopInstanceUID)
}

// MostRecentDisplaySet returns the last cached set.
func (s *Service) MostRecentDisplaySet() (*displayset.DisplaySet, bool) {
	return s.store.MostRecent()
}

// DisplaySetsBy returns the active sets matching pred.
func (s *Service) DisplaySetsBy(pred func(*displayset.DisplaySet) bool) []*displayset.DisplaySet {
	var out []*displayset.DisplaySet
	for _, ds := range s.store.Active() {
		if pred(ds) {
			out = append(out, ds)
		}
	}
	return out
}

// SortDisplaySets reorders the active list. Unless suppressEvent is set a
// DISPLAY_SETS_CHANGED event follows.
func (s *Service) SortDisplaySets(compare func(a, b *displayset.DisplaySet) int, descending, suppressEvent bool) {
	if compare == nil {
		compare = bySeriesNumber
	}
	if descending {
		asc := compare
		compare = func(a, b *displayset.DisplaySet) int { return asc(b, a) }
	}
	s.store.SortActive(compare)
	if !suppressEvent {
		s.publishChanged()
	}
}

func bySeriesNumber(a, b *displayset.DisplaySet) int {
	an, _ := seriesNumber(a)
	bn, _ := seriesNumber(b)
	return cmp.Compare(an, bn)
}

func seriesNumber(ds *displayset.DisplaySet) (int, bool) {
	recs := ds.Instances()
	if len(recs) == 0 {
		return 0, false
	}
	return recs[0].Int(constants.SeriesNumber)
}

// AddDisplaySets caches sets made outside ingestion, e.g. by a tool, and
// activates them. Sets already cached are left alone.
func (s *Service) AddDisplaySets(sets ...*displayset.DisplaySet) []*displayset.DisplaySet {
	var added []*displayset.DisplaySet
	for _, ds := range sets {
		if ds != nil && s.store.Insert(ds) {
			added = append(added, ds)
		}
	}
	if len(added) == 0 {
		return nil
	}
	changed := s.store.Activate(added...)
	s.recordSizes()
	if changed {
		s.publishChanged()
	}
	s.bus.Publish(events.DisplaySetsAdded, AddedPayload{
		Groups:  [][]*displayset.DisplaySet{added},
		Options: IngestOptions{MadeInClient: true},
	})
	return added
}

// DeleteDisplaySet removes the set from the cache and the active list.
// It reports whether the set existed; when it did, DISPLAY_SETS_CHANGED and
// then DISPLAY_SETS_REMOVED are published.
func (s *Service) DeleteDisplaySet(uid string) bool {
	ds, ok := s.store.Get(uid)
	if !ok || !s.store.Delete(uid) {
		return false
	}
	s.arena.Release(arena.Key(ds.SeriesInstanceUID, ds.HandlerID))
	s.recordSizes()

	s.logger.Debug().Str("display_set_uid", uid).Msg("Display set deleted")
	s.publishChanged()
	s.bus.Publish(events.DisplaySetsRemoved, RemovedPayload{UIDs: []string{uid}})
	return true
}

// SetMetadataInvalidated announces that the set's backing metadata changed.
func (s *Service) SetMetadataInvalidated(uid string, invalidateData bool) error {
	if _, ok := s.store.Get(uid); !ok {
		return errors.NewNotFoundError("display set", uid)
	}
	s.metrics.Invalidated()
	s.bus.Publish(events.SeriesMetadataInvalidated, InvalidatedPayload{
		DisplaySetInstanceUID: uid,
		InvalidateData:        invalidateData,
	})
	return nil
}

// OnModeExit tears down the session: cache, active list and arena are
// emptied while registered builders stay usable.
func (s *Service) OnModeExit() {
	s.store.Reset()
	s.arena.Clear()
	s.recordSizes()
	s.logger.Debug().Msg("Display set session reset")
}

// Len returns the number of cached sets.
func (s *Service) Len() int {
	return s.store.Len()
}

func (s *Service) publishChanged() {
	s.bus.Publish(events.DisplaySetsChanged, ChangedPayload{Active: s.store.Active()})
}

func (s *Service) recordSizes() {
	s.metrics.SetSizes(s.store.Len(), len(s.store.Active()))
}

// withLogger threads the service logger through ctx for builders.
func (s *Service) withLogger(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, s.logger)
}
