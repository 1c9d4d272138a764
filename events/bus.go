// Package events provides the in-process notification channel for inventory
// mutations. The presentation layer subscribes to it instead of the service
// calling into any UI/notification code directly.
package events

import (
	"sync"
	"time"
)

// Type identifies a mutation outcome.
type Type string

const (
	ItemAdded      Type = "item_added"
	ItemUpdated    Type = "item_updated"
	ItemDeleted    Type = "item_deleted"
	MutationFailed Type = "mutation_failed"
)

// Event is one mutation notification. Reason is set only for MutationFailed.
type Event struct {
	Type      Type      `json:"type"`
	UserID    string    `json:"-"`
	ItemID    string    `json:"itemId,omitempty"`
	ItemName  string    `json:"itemName,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

// Bus is a small fan-out pub/sub for mutation events. Publishing never
// blocks; a subscriber that falls behind loses events rather than stalling
// the mutation path.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function that removes the subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
