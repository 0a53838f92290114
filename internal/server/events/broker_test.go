package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubscriber struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

func (m *mockSubscriber) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func startBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)
	return b, cancel
}

func TestBrokerDeliversInOrder(t *testing.T) {
	b, _ := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Publish(DisplaySetsChanged, nil)
	b.Publish(DisplaySetsAdded, nil)
	b.Publish(DisplaySetsRemoved, nil)

	want := []EventType{DisplaySetsChanged, DisplaySetsAdded, DisplaySetsRemoved}
	assert.Eventually(t, func() bool { return assert.ObjectsAreEqual(want, sub.types()) }, time.Second, 5*time.Millisecond)
}

func TestBrokerSubscribeBeforeRun(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			b.Subscribe(&mockSubscriber{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe blocked before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)
	assert.Eventually(t, func() bool { return b.SubscriberCount() == 5 }, time.Second, 5*time.Millisecond)
}

func TestBrokerUnsubscribeAndShutdown(t *testing.T) {
	b, cancel := startBroker(t)
	a, c := &mockSubscriber{}, &mockSubscriber{}
	b.Subscribe(a)
	b.Subscribe(c)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 2 }, time.Second, 5*time.Millisecond)

	b.Unsubscribe(a)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.isClosed())

	cancel()
	assert.Eventually(t, func() bool { return b.SubscriberCount() == 0 && c.isClosed() }, time.Second, 5*time.Millisecond)
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(b.events)+10; i++ {
			b.Publish(DisplaySetsChanged, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}
