package server

import (
	"time"

	"github.com/OHIF/Viewers-sub030/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix      string
	MaxRequestBytes int64

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            constants.DefaultHost,
		Port:            constants.DefaultPort,
		PathPrefix:      constants.DefaultPathPrefix,
		MaxRequestBytes: constants.MaxRequestBytes,
		CORSEnabled:     false,
		CORSOrigins:     []string{},
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		MetricsEnabled:  true,
	}
}
