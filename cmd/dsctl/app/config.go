package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/OHIF/Viewers-sub030/internal/server"
	"github.com/OHIF/Viewers-sub030/pkg/constants"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// EnvPrefix prefixes every environment variable dsctl reads.
const EnvPrefix = "DSCTL"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Engine configuration
	Fallback         bool
	ArenaTTL         time.Duration
	ArenaCleanup     time.Duration
	MetricsNamespace string

	// Server configuration
	Server server.Config

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (DSCTL_ prefix; LOG_* for logging)
//  3. .env files
//  4. Config file (path, or ~/.dsctl.yaml, or ./.dsctl.yaml)
//  5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".dsctl")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "reading .dsctl.yaml", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		Fallback:         v.GetBool("fallback"),
		ArenaTTL:         v.GetDuration("arena.ttl"),
		ArenaCleanup:     v.GetDuration("arena.cleanup"),
		MetricsNamespace: v.GetString("metrics.namespace"),

		Server: server.Config{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			PathPrefix:      v.GetString("server.prefix"),
			MaxRequestBytes: v.GetInt64("server.max_request_bytes"),
			CORSEnabled:     v.GetBool("server.cors"),
			CORSOrigins:     v.GetStringSlice("server.cors_origins"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			MetricsEnabled:  v.GetBool("server.metrics"),
		},

		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log.level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log.format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log.output")),
	}

	if config.ArenaTTL <= 0 {
		return nil, errors.NewConfigError("arena", "ttl must be positive", nil)
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return nil, errors.NewConfigError("server", "port out of range", nil)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := server.DefaultConfig()

	v.SetDefault("fallback", true)
	v.SetDefault("arena.ttl", constants.DefaultArenaTTL)
	v.SetDefault("arena.cleanup", constants.DefaultArenaCleanup)
	v.SetDefault("metrics.namespace", constants.DefaultMetricsNamespace)

	v.SetDefault("server.host", defaults.Host)
	v.SetDefault("server.port", defaults.Port)
	v.SetDefault("server.prefix", defaults.PathPrefix)
	v.SetDefault("server.max_request_bytes", defaults.MaxRequestBytes)
	v.SetDefault("server.cors", defaults.CORSEnabled)
	v.SetDefault("server.cors_origins", defaults.CORSOrigins)
	v.SetDefault("server.read_timeout", defaults.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.WriteTimeout)
	v.SetDefault("server.idle_timeout", defaults.IdleTimeout)
	v.SetDefault("server.metrics", defaults.MetricsEnabled)

	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
