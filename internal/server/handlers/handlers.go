// Package handlers provides HTTP request handlers for the display-set API.
package handlers

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/internal/server/events"
	"github.com/OHIF/Viewers-sub030/internal/server/sse"
	ws "github.com/OHIF/Viewers-sub030/internal/server/websocket"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	svc            *reconciler.Service
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(
	svc *reconciler.Service,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		svc:            svc,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      startTime,
	}
}
