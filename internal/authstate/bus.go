// Package authstate carries sign-in and sign-out notifications between the
// identity provider and anything watching a session.
package authstate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	SignedIn  Kind = "signed_in"
	SignedOut Kind = "signed_out"
)

// Event reports a change for one account. An empty SessionID on a SignedOut
// event means every session of the account ended.
type Event struct {
	AccountID string    `json:"account_id"`
	SessionID string    `json:"session_id,omitempty"`
	Kind      Kind      `json:"kind"`
	At        time.Time `json:"at"`
}

// Bus fans events out to subscribers. Subscriptions end when their context does.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}

const subscriberBuffer = 16

// MemoryBus is the single-process Bus. Events reach each subscriber in
// publish order; a subscriber that falls subscriberBuffer events behind
// misses the overflow.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan Event)}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("auth state subscriber lagging, event dropped", "subscriber", id, "kind", ev.Kind)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(id)
	}()
	return ch, nil
}

func (b *MemoryBus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers reports how many subscriptions are live.
func (b *MemoryBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
