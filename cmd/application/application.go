// Package application provides the application interface for dsctl commands.
//
// Commands accept this interface rather than the concrete App type, so they
// can be exercised against a mock:
//
//	mock := &application.Mock{
//	    ServiceFunc: func() (*reconciler.Service, error) {
//	        return reconciler.New(reconciler.WithHandlers(stack.New()))
//	    },
//	}
//	cmd := ingest.NewCommand(mock)
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/internal/server"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// Application provides what commands need from the application.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Service returns the session's display-set engine, created on first use.
	Service() (*reconciler.Service, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Gatherer returns the registry the engine's metrics are recorded in.
	Gatherer() prometheus.Gatherer

	// ServerConfig returns the HTTP server settings from configuration.
	ServerConfig() server.Config

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
