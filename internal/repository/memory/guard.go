package memory

import (
	"context"
	"time"
)

// LinkGuard remembers consumed action link IDs until they expire. It stands
// in for the Redis guard when REDIS_ENABLED=false.
type LinkGuard struct {
	s *Store
}

func (s *Store) LinkGuard() *LinkGuard { return &LinkGuard{s: s} }

// Consume returns true the first time id is seen before expiresAt.
func (g *LinkGuard) Consume(_ context.Context, id string, expiresAt time.Time) (bool, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	now := g.s.now()
	for k, exp := range g.s.consumed {
		if !now.Before(exp) {
			delete(g.s.consumed, k)
		}
	}
	if _, seen := g.s.consumed[id]; seen {
		return false, nil
	}
	g.s.consumed[id] = expiresAt
	return true, nil
}
