package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OHIF/Viewers-sub030/internal/server/events"
	"github.com/OHIF/Viewers-sub030/internal/server/sse"
	ws "github.com/OHIF/Viewers-sub030/internal/server/websocket"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

func TestSubscribersNeverFail(t *testing.T) {
	logger := zerolog.Nop()
	subs := map[string]events.Subscriber{
		"sse":       NewSSESubscriber(sse.NewBroadcaster(&logger)),
		"websocket": NewWebSocketSubscriber(ws.NewHub(&logger)),
	}
	kinds := []events.EventType{
		events.DisplaySetsAdded,
		events.DisplaySetsChanged,
		events.DisplaySetsRemoved,
		events.SeriesMetadataInvalidated,
		events.SessionReset,
	}

	for name, sub := range subs {
		t.Run(name, func(t *testing.T) {
			for _, kind := range kinds {
				require.NoError(t, sub.Send(events.Event{Type: kind, Timestamp: time.Now()}))
			}
			assert.NoError(t, sub.Close())
			assert.NoError(t, sub.Close())
		})
	}
}

func TestSSEIDsIncrease(t *testing.T) {
	logger := zerolog.Nop()
	b := sse.NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	client := b.Attach()
	defer b.Detach(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	sub := NewSSESubscriber(b)
	require.NoError(t, sub.Send(events.Event{Type: events.DisplaySetsChanged}))
	require.NoError(t, sub.Send(events.Event{Type: events.DisplaySetsAdded}))

	first, second := <-client, <-client
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, string(events.DisplaySetsAdded), second.Event)
}

func TestWebSocketMessagesNameDisplaySets(t *testing.T) {
	logger := zerolog.Nop()
	hub := ws.NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := ws.NewClient("c", hub, nil)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	a := displayset.New([]instances.Instance{{"SOPInstanceUID": "1", "SeriesInstanceUID": "S"}})
	b := displayset.New([]instances.Instance{{"SOPInstanceUID": "2", "SeriesInstanceUID": "S"}})
	sub := NewWebSocketSubscriber(hub)

	tests := []struct {
		name string
		kind events.EventType
		data any
		want []string
	}{
		{"added", events.DisplaySetsAdded, reconciler.AddedPayload{Groups: [][]*displayset.DisplaySet{{a}, {b}}}, []string{a.UID(), b.UID()}},
		{"changed", events.DisplaySetsChanged, reconciler.ChangedPayload{Active: []*displayset.DisplaySet{b}}, []string{b.UID()}},
		{"removed", events.DisplaySetsRemoved, reconciler.RemovedPayload{UIDs: []string{"gone"}}, []string{"gone"}},
		{"invalidated", events.SeriesMetadataInvalidated, reconciler.InvalidatedPayload{DisplaySetInstanceUID: a.UID()}, []string{a.UID()}},
		{"reset", events.SessionReset, map[string]any{"cleared": 2}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, sub.Send(events.Event{Type: tt.kind, Data: events.Snapshot(tt.data)}))
			select {
			case msg := <-client.Send():
				assert.Equal(t, string(tt.kind), msg.Type)
				assert.Equal(t, tt.want, msg.DisplaySetInstanceUIDs)
			case <-time.After(time.Second):
				t.Fatal("message not delivered")
			}
		})
	}
}
