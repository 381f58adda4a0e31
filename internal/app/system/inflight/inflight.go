// internal/app/system/inflight/inflight.go
package inflight

import "sync"

// Guard tracks operations in progress so a second submission of the same
// operation (double-clicked button, retried request) is rejected while the
// first is still running.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// Begin marks key as in flight. It returns false if the key is already
// active, in which case the caller must not proceed and must not call done.
// On success the returned done func releases the key; it is safe to call
// exactly once, typically via defer.
func (g *Guard) Begin(key string) (done func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.active, key)
		g.mu.Unlock()
	}, true
}

// Active reports whether key is currently in flight.
func (g *Guard) Active(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[key]
	return busy
}
