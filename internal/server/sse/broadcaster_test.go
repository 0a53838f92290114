package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func running(t *testing.T) (*Broadcaster, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)
	return b, cancel
}

func TestAttachBroadcastDetach(t *testing.T) {
	b, _ := running(t)

	client := b.Attach()
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Broadcast(Event{Event: "DISPLAY_SETS_CHANGED", Data: map[string]any{"n": 1}})
	select {
	case got := <-client:
		assert.Equal(t, "DISPLAY_SETS_CHANGED", got.Event)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	b.Detach(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client
	assert.False(t, open)
}

func TestShutdownClosesClients(t *testing.T) {
	b, cancel := running(t)
	client := b.Attach()
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case _, open := <-client:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b, _ := running(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	b.Broadcast(Event{Event: "DISPLAY_SETS_REMOVED", ID: "7", Data: []string{"uid"}})

	var frame []string
	for len(frame) < 3 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: DISPLAY_SETS_REMOVED") || len(frame) > 0 {
			frame = append(frame, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{"event: DISPLAY_SETS_REMOVED", "id: 7", `data: ["uid"]`}, frame)
}
