// Package app provides the application context and dependency management
// for the dsctl CLI: configuration, logging and the session's engine.
package app

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/internal/arena"
	"github.com/OHIF/Viewers-sub030/internal/metrics"
	"github.com/OHIF/Viewers-sub030/internal/server"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/handlers/stack"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// App represents the dsctl application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config   *Config
	logger   *zerolog.Logger
	registry *prometheus.Registry

	// Engine (lazy-initialized, singleton)
	mu  sync.RWMutex
	svc *reconciler.Service
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Gatherer returns the metrics registry.
func (a *App) Gatherer() prometheus.Gatherer { return a.registry }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// ServerConfig returns the HTTP server settings.
func (a *App) ServerConfig() server.Config { return a.config.Server }

// Service returns the engine, creating it on first use.
func (a *App) Service() (*reconciler.Service, error) {
	a.mu.RLock()
	if a.svc != nil {
		svc := a.svc
		a.mu.RUnlock()
		return svc, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.svc != nil {
		return a.svc, nil
	}

	svc, err := reconciler.New(a.serviceOptions()...)
	if err != nil {
		return nil, errors.NewConfigError("engine", "creating display-set service", err)
	}
	a.svc = svc
	return svc, nil
}

func (a *App) serviceOptions() []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithHandlers(stack.New()),
		reconciler.WithLogger(a.logger),
		reconciler.WithArena(arena.New(a.config.ArenaTTL, a.config.ArenaCleanup)),
		reconciler.WithMetrics(metrics.New(
			metrics.WithRegistry(a.registry),
			metrics.WithNamespace(a.config.MetricsNamespace),
		)),
	}
	if a.config.Fallback {
		opts = append(opts, reconciler.WithUnsupportedHandler(nil))
	}
	return opts
}

// Shutdown ends the session, releasing everything the engine holds.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	svc := a.svc
	a.mu.RUnlock()

	if svc != nil {
		svc.OnModeExit()
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithService sets a custom engine (useful for testing).
func WithService(svc *reconciler.Service) Option {
	return func(a *App) error {
		a.svc = svc
		return nil
	}
}
