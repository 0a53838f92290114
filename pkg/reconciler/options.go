package reconciler

import (
	"maps"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/OHIF/Viewers-sub030/internal/arena"
	"github.com/OHIF/Viewers-sub030/internal/metrics"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/handlers"
	"github.com/OHIF/Viewers-sub030/pkg/handlers/unsupported"
	"github.com/OHIF/Viewers-sub030/pkg/store"
)

// options configures a Service.
type options struct {
	registry *handlers.Registry
	handlers []handlers.Handler
	store    *store.Store
	bus      *events.Bus
	arena    *arena.Arena
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *zerolog.Logger
	fallback handlers.Handler
}

// Option is a function that configures a Service.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRegistry uses an existing handler registry.
func WithRegistry(registry *handlers.Registry) Option {
	return func(o *options) error {
		if registry == nil {
			return &errors.ValidationError{Field: "registry", Message: "cannot be nil"}
		}
		o.registry = registry
		return nil
	}
}

// WithHandlers registers builders in the given order, after any already in
// the registry.
func WithHandlers(hs ...handlers.Handler) Option {
	return func(o *options) error {
		o.handlers = append(o.handlers, hs...)
		return nil
	}
}

// WithStore uses an existing display-set store.
func WithStore(s *store.Store) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{Field: "store", Message: "cannot be nil"}
		}
		o.store = s
		return nil
	}
}

// WithBus uses an existing event bus.
func WithBus(bus *events.Bus) Option {
	return func(o *options) error {
		if bus == nil {
			return &errors.ValidationError{Field: "bus", Message: "cannot be nil"}
		}
		o.bus = bus
		return nil
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithUnsupportedHandler builds unclaimed partitions with h instead of
// skipping them. A nil h selects the built-in unsupported builder.
func WithUnsupportedHandler(h handlers.Handler) Option {
	return func(o *options) error {
		if h == nil {
			h = unsupported.New()
		}
		o.fallback = h
		return nil
	}
}

// WithArena uses an existing raw-instance arena.
func WithArena(a *arena.Arena) Option {
	return func(o *options) error {
		if a == nil {
			return &errors.ValidationError{Field: "arena", Message: "cannot be nil"}
		}
		o.arena = a
		return nil
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// IngestOptions is the option bag of one ingestion call. It is carried on
// the DISPLAY_SETS_ADDED payload.
type IngestOptions struct {
	Batch        bool           `json:"batch"`
	MadeInClient bool           `json:"madeInClient"`
	Settings     map[string]any `json:"settings,omitempty"`
}

// MakeOption configures one ingestion call.
type MakeOption func(*IngestOptions)

// WithMadeInClient marks produced sets as synthesized locally.
func WithMadeInClient(madeInClient bool) MakeOption {
	return func(o *IngestOptions) {
		o.MadeInClient = madeInClient
	}
}

// WithSettings merges the viewport hints onto every produced set.
func WithSettings(settings map[string]any) MakeOption {
	return func(o *IngestOptions) {
		if o.Settings == nil {
			o.Settings = make(map[string]any, len(settings))
		}
		maps.Copy(o.Settings, settings)
	}
}

func newIngestOptions(batch bool, opts []MakeOption) IngestOptions {
	o := IngestOptions{Batch: batch}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
