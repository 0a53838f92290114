// Package events fans engine notifications out to the streaming transports.
//
// The engine's own bus delivers synchronously inside the mutating call; the
// Broker here decouples network clients from that path. Events are queued
// and sent to every transport (WebSocket, SSE) from the broker's goroutine.
package events

import (
	"time"

	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	dsevents "github.com/OHIF/Viewers-sub030/pkg/events"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// EventType represents the type of a streamed event.
type EventType string

// Event types. Engine kinds keep their names on the wire.
const (
	DisplaySetsAdded          = EventType(dsevents.DisplaySetsAdded)
	DisplaySetsChanged        = EventType(dsevents.DisplaySetsChanged)
	DisplaySetsRemoved        = EventType(dsevents.DisplaySetsRemoved)
	SeriesMetadataInvalidated = EventType(dsevents.SeriesMetadataInvalidated)

	// SessionReset is published by the server after onModeExit.
	SessionReset EventType = "SESSION_RESET"

	// ClientConnected is sent to a transport client when it attaches.
	ClientConnected EventType = "client.connected"
)

// Event represents a streamed event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// AddedData is the streamed form of a DISPLAY_SETS_ADDED payload.
type AddedData struct {
	Groups  [][]displayset.Snapshot  `json:"displaySetsAdded"`
	Options reconciler.IngestOptions `json:"options"`
}

// ChangedData is the streamed form of a DISPLAY_SETS_CHANGED payload.
type ChangedData struct {
	Active []displayset.Snapshot `json:"activeDisplaySets"`
}

// Snapshot converts an engine payload into its streamed form. Live display
// sets are snapshotted at publish time; other payloads are already values.
func Snapshot(data any) any {
	switch p := data.(type) {
	case reconciler.AddedPayload:
		groups := make([][]displayset.Snapshot, len(p.Groups))
		for i, g := range p.Groups {
			groups[i] = displayset.Snapshots(g)
		}
		return AddedData{Groups: groups, Options: p.Options}
	case reconciler.ChangedPayload:
		return ChangedData{Active: displayset.Snapshots(p.Active)}
	default:
		return data
	}
}

// DisplaySetUIDs lists the display sets an event concerns.
func (e Event) DisplaySetUIDs() []string {
	var uids []string
	switch p := e.Data.(type) {
	case AddedData:
		for _, g := range p.Groups {
			for _, snap := range g {
				uids = append(uids, snap.DisplaySetInstanceUID)
			}
		}
	case ChangedData:
		for _, snap := range p.Active {
			uids = append(uids, snap.DisplaySetInstanceUID)
		}
	case reconciler.RemovedPayload:
		uids = append(uids, p.UIDs...)
	case reconciler.InvalidatedPayload:
		uids = append(uids, p.DisplaySetInstanceUID)
	}
	return uids
}
