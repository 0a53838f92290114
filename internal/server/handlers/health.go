package handlers

import (
	"net/http"
	"time"

	"github.com/OHIF/Viewers-sub030/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "dsctl",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready with session and transport counts.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	fallback := ""
	if fb, ok := h.svc.Fallback(); ok {
		fallback = fb.ID()
	}
	response.OK(w, map[string]any{
		"status":            "ready",
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"handlers":          len(h.svc.Handlers()),
		"fallback":          fallback,
		"display_sets":      h.svc.Len(),
		"active":            len(h.svc.ActiveDisplaySets()),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
