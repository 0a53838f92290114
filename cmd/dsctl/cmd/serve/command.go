// Package serve provides the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OHIF/Viewers-sub030/cmd/application"
	"github.com/OHIF/Viewers-sub030/internal/server"
	"github.com/OHIF/Viewers-sub030/pkg/constants"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := app.ServerConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve a display-set session over HTTP",
		Long: `Serve exposes one session's engine over HTTP.

Endpoints:
  POST   /api/v1/instances[?batch=true&madeInClient=true&settings={...}]
  GET    /api/v1/displaysets[?series=UID&active=false&description=PATTERN]
  GET    /api/v1/displaysets/{uid}
  DELETE /api/v1/displaysets/{uid}
  POST   /api/v1/displaysets/{uid}/invalidate
  POST   /api/v1/session/reset
  GET    /api/v1/handlers
  GET    /api/v1/updates/ws      (WebSocket events)
  GET    /api/v1/updates/stream  (Server-Sent Events)
  GET    /metrics
  GET    /health`,
		Example: `  dsctl serve
  dsctl serve --port 3000 --cors
  DSCTL_SERVER_PORT=9000 dsctl serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.ServerConfig()
			applyFlags(cmd, &cfg)
			return run(cmd.Context(), app, cfg)
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", defaults.CORSEnabled, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", defaults.CORSOrigins, "Allowed CORS origins (comma-separated)")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable metrics endpoint")

	return cmd
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *server.Config) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("host") {
		cfg.Host, _ = f.GetString("host")
	}
	if f.Changed("prefix") {
		cfg.PathPrefix, _ = f.GetString("prefix")
	}
	if f.Changed("cors") {
		cfg.CORSEnabled, _ = f.GetBool("cors")
	}
	if f.Changed("cors-origins") {
		cfg.CORSOrigins, _ = f.GetStringSlice("cors-origins")
		cfg.CORSEnabled = true
	}
	if f.Changed("read-timeout") {
		cfg.ReadTimeout, _ = f.GetDuration("read-timeout")
	}
	if f.Changed("write-timeout") {
		cfg.WriteTimeout, _ = f.GetDuration("write-timeout")
	}
	if f.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = f.GetDuration("idle-timeout")
	}
	if f.Changed("metrics") {
		cfg.MetricsEnabled, _ = f.GetBool("metrics")
	}
}

func run(ctx context.Context, app application.Application, cfg server.Config) error {
	svc, err := app.Service()
	if err != nil {
		return err
	}
	logger := app.Logger()

	srv := server.New(svc, cfg, logger, app.Gatherer())
	srv.Start()

	httpServer := srv.HTTPServer(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("prefix", cfg.PathPrefix).
			Bool("cors", cfg.CORSEnabled).
			Bool("metrics", cfg.MetricsEnabled).
			Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		shutdownServices(srv, logger)
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	shutdownServices(srv, logger)
	logger.Info().Msg("Server stopped gracefully")
	return nil
}

func shutdownServices(srv *server.Server, logger *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Background services did not stop cleanly")
	}
}
