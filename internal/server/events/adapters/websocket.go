// Package adapters connects the event broker to the streaming transports.
package adapters

import (
	"github.com/OHIF/Viewers-sub030/internal/server/events"
	ws "github.com/OHIF/Viewers-sub030/internal/server/websocket"
)

// WebSocketSubscriber forwards broker events to the WebSocket hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a subscriber broadcasting on hub.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send broadcasts the event under its kind, with the display-set UIDs it
// touches lifted out of the payload. A session reset carries none: clients
// drop everything they hold.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:                   string(event.Type),
		Timestamp:              event.Timestamp,
		DisplaySetInstanceUIDs: event.DisplaySetUIDs(),
		Data:                   event.Data,
	})
	return nil
}

// Close does nothing; the hub stops with the server context.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
