// Package session tracks whether a token currently maps to a signed-in user.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
)

// State is one observation. Loading is true only until the provider has
// answered for the first time.
type State struct {
	User    *identity.Identity
	Loading bool
}

// Watcher is the auth-state half of identity.Provider.
type Watcher interface {
	Watch(ctx context.Context, token string) (<-chan identity.StateChange, error)
}

const updateBuffer = 8

type Tracker struct {
	watcher Watcher
	token   string

	mu      sync.RWMutex
	state   State
	updates chan State
}

func NewTracker(w Watcher, token string) *Tracker {
	return &Tracker{
		watcher: w,
		token:   token,
		state:   State{Loading: true},
		updates: make(chan State, updateBuffer),
	}
}

func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Updates delivers every state change after the initial loading state. It is
// closed when Run returns. A slow reader skips to the newest states.
func (t *Tracker) Updates() <-chan State {
	return t.updates
}

// Run follows the provider's stream until ctx ends or the stream closes.
// Errors are never surfaced as a signed-in state: they resolve to signed out.
func (t *Tracker) Run(ctx context.Context) error {
	defer close(t.updates)

	stream, err := t.watcher.Watch(ctx, t.token)
	if err != nil {
		slog.Warn("auth state watch failed", "error", err)
		t.set(nil)
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case sc, ok := <-stream:
			if !ok {
				return nil
			}
			if sc.Err != nil {
				slog.Warn("auth state stream error", "error", sc.Err)
				t.set(nil)
				continue
			}
			t.set(sc.Identity)
		}
	}
}

func (t *Tracker) set(user *identity.Identity) {
	t.mu.Lock()
	t.state = State{User: user, Loading: false}
	s := t.state
	t.mu.Unlock()

	t.publish(s)
}

// publish is only called from Run, so draining one stale state always makes
// room.
func (t *Tracker) publish(s State) {
	select {
	case t.updates <- s:
		return
	default:
	}
	select {
	case <-t.updates:
	default:
	}
	t.updates <- s
}
