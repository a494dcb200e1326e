package auth

import (
	"errors"
	"sync"
)

var ErrActionPending = errors.New("action already in progress")

type guardKey struct {
	action string
	client string
}

// Guard admits one in-flight submit per action and client. A second submit
// while the first is pending is refused rather than queued.
type Guard struct {
	mu      sync.Mutex
	pending map[guardKey]struct{}
}

func NewGuard() *Guard {
	return &Guard{pending: make(map[guardKey]struct{})}
}

// Acquire marks the action pending for client. The returned release must be
// called when the action settles.
func (g *Guard) Acquire(action, client string) (release func(), err error) {
	k := guardKey{action: action, client: client}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[k]; busy {
		return nil, ErrActionPending
	}
	g.pending[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, k)
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) Pending(action, client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[guardKey{action: action, client: client}]
	return busy
}
