// Package application provides a mock of the command application interface.
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/internal/server"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// Mock provides a mock implementation of Application for testing.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ServiceFunc      func() (*reconciler.Service, error)
	LoggerFunc       func() *zerolog.Logger
	GathererFunc     func() prometheus.Gatherer
	ServerConfigFunc func() server.Config
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Service returns the mock service, or an engine with no builders.
func (m *Mock) Service() (*reconciler.Service, error) {
	if m.ServiceFunc != nil {
		return m.ServiceFunc()
	}
	logger := m.Logger()
	return reconciler.New(reconciler.WithLogger(logger))
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Gatherer returns the mock gatherer or an empty registry.
func (m *Mock) Gatherer() prometheus.Gatherer {
	if m.GathererFunc != nil {
		return m.GathererFunc()
	}
	return prometheus.NewRegistry()
}

// ServerConfig returns the mock server config or the defaults.
func (m *Mock) ServerConfig() server.Config {
	if m.ServerConfigFunc != nil {
		return m.ServerConfigFunc()
	}
	return server.DefaultConfig()
}

// OutputFormat returns the mock format or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the mock version or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the mock commit or "test".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "test"
}

// Date returns the mock date or "test".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "test"
}

// BuiltBy returns the mock builder or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
