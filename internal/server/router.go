package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OHIF/Viewers-sub030/internal/server/handlers"
	"github.com/OHIF/Viewers-sub030/internal/server/middleware"
	"github.com/OHIF/Viewers-sub030/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()
	s.applyMiddleware(r)

	h := handlers.New(
		s.svc,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
		s.startTime,
	)
	s.registerRoutes(r, h)
	return r
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/health", h.HandleHealth)

	if s.config.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/ready", h.HandleReady)

		r.With(middleware.MaxBytes(s.config.MaxRequestBytes)).
			Post("/instances", h.HandleIngest(s.config.MaxRequestBytes))

		r.Route("/displaysets", func(r chi.Router) {
			r.Get("/", h.HandleListDisplaySets)
			r.Get("/{uid}", h.HandleGetDisplaySet)
			r.Delete("/{uid}", h.HandleDeleteDisplaySet)
			r.Post("/{uid}/invalidate", h.HandleInvalidate)
		})

		r.Post("/session/reset", h.HandleReset)
		r.Get("/handlers", h.HandleListHandlers)

		r.Get("/updates/ws", h.HandleWebSocket)
		r.Get("/updates/stream", h.HandleSSE)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})
}

// applyMiddleware installs the middleware chain. Recovery is outermost.
func (s *Server) applyMiddleware(r chi.Router) {
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(s.logger))

	if s.config.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(s.config.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = s.config.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		r.Use(middleware.CORS(corsConfig))
	}
}
