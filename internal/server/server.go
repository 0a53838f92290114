// Package server provides the HTTP surface of a display-set session: an
// ingestion endpoint, queries over the engine's state and live event streams.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/internal/server/events"
	"github.com/OHIF/Viewers-sub030/internal/server/events/adapters"
	"github.com/OHIF/Viewers-sub030/internal/server/sse"
	ws "github.com/OHIF/Viewers-sub030/internal/server/websocket"
	dsevents "github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	svc            *reconciler.Service
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	gatherer       prometheus.Gatherer
	logger         *zerolog.Logger
	config         Config
	subscription   dsevents.Subscription
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startTime      time.Time
}

// New creates a server over svc. gatherer backs /metrics; nil uses the
// default Prometheus gatherer.
func New(svc *reconciler.Service, cfg Config, logger *zerolog.Logger, gatherer prometheus.Gatherer) *Server {
	logger = logging.OrDefault(logger)
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = DefaultConfig().MaxRequestBytes
	}

	logger.Debug().Msg("Creating event broker")
	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	logger.Debug().Int("transports", 2).Msg("Transports subscribed to event broker")

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		svc:            svc,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		gatherer:  gatherer,
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	s.subscription = s.connectEvents()
	return s
}

// connectEvents bridges the engine's synchronous bus onto the broker.
// Payloads are converted to snapshots here, inside the mutating call, so
// streamed clients see the state as of the event.
func (s *Server) connectEvents() dsevents.Subscription {
	sub := s.svc.SubscribeAll(func(e dsevents.Event) error {
		s.broker.Publish(events.EventType(e.Kind), events.Snapshot(e.Data))
		return nil
	})
	s.logger.Info().Msg("Display-set events connected to event broker")
	return sub
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting background services")
	for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			run(s.ctx)
		}()
	}
	s.logger.Debug().Msg("All background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown detaches from the engine and stops background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	if s.subscription != nil {
		s.subscription.Unsubscribe()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Service returns the engine the server exposes.
func (s *Server) Service() *reconciler.Service {
	return s.svc
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// SSEBroadcaster returns the SSE broadcaster.
func (s *Server) SSEBroadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
