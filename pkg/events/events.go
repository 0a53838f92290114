// Package events provides the in-process change notifier for display-set
// state. Delivery is synchronous and follows subscription order; a failing
// subscriber never stops delivery to the ones after it.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/OHIF/Viewers-sub030/pkg/logging"
)

// Kind identifies an event.
type Kind string

// Event kinds published by the engine.
const (
	// DisplaySetsAdded carries the groups produced or reused by an ingestion call.
	DisplaySetsAdded Kind = "DISPLAY_SETS_ADDED"

	// DisplaySetsChanged carries the full active list.
	DisplaySetsChanged Kind = "DISPLAY_SETS_CHANGED"

	// DisplaySetsRemoved carries the removed displaySetInstanceUIDs.
	DisplaySetsRemoved Kind = "DISPLAY_SETS_REMOVED"

	// SeriesMetadataInvalidated names a set whose backing metadata changed.
	SeriesMetadataInvalidated Kind = "SERIES_METADATA_INVALIDATED"
)

// Kinds returns every event kind.
func Kinds() []Kind {
	return []Kind{DisplaySetsAdded, DisplaySetsChanged, DisplaySetsRemoved, SeriesMetadataInvalidated}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case DisplaySetsAdded, DisplaySetsChanged, DisplaySetsRemoved, SeriesMetadataInvalidated:
		return true
	}
	return false
}

// Event is one notification.
type Event struct {
	Kind      Kind      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Callback receives events. A returned error is logged.
type Callback func(Event) error

// Subscription is returned by Subscribe.
type Subscription interface {
	Unsubscribe()
}

type subscriber struct {
	id uint64
	cb Callback
}

// Bus is a synchronous publish/subscribe bus. It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscriber
	logger *zerolog.Logger
}

// NewBus creates a bus logging subscriber failures to logger.
func NewBus(logger *zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[Kind][]subscriber),
		logger: logging.OrDefault(logger),
	}
}

// Subscribe registers cb for kind.
func (b *Bus) Subscribe(kind Kind, cb Callback) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscriber{id: id, cb: cb})
	return &subscription{bus: b, kind: kind, id: id}
}

// SubscribeAll registers cb for every kind. The returned subscription
// removes all of them.
func (b *Bus) SubscribeAll(cb Callback) Subscription {
	var group multiSubscription
	for _, kind := range Kinds() {
		group = append(group, b.Subscribe(kind, cb))
	}
	return group
}

// Count returns the number of subscribers for kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

// Publish delivers an event to every subscriber of kind in order.
func (b *Bus) Publish(kind Kind, data any) {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs[kind]...)
	b.mu.RUnlock()

	event := Event{Kind: kind, Timestamp: time.Now(), Data: data}
	for _, s := range subs {
		if err := b.deliver(s, event); err != nil {
			b.logger.Warn().
				Err(err).
				Str("event_type", string(kind)).
				Uint64("subscriber", s.id).
				Msg("Subscriber failed")
		}
	}
}

func (b *Bus) deliver(s subscriber, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return s.cb(event)
}

func (b *Bus) remove(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[kind]
	for i, s := range list {
		if s.id == id {
			b.subs[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

type subscription struct {
	bus  *Bus
	kind Kind
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.bus.remove(s.kind, s.id) })
}

type multiSubscription []Subscription

func (m multiSubscription) Unsubscribe() {
	for _, s := range m {
		s.Unsubscribe()
	}
}
