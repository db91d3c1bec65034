// Package blacklist records consumed single-use identifiers in Redis.
package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "studio:consumed:"

// LinkGuard marks action link IDs as used. Keys expire with the link so the
// set never grows past the links still in circulation.
type LinkGuard struct {
	redis *redis.Client
	now   func() time.Time
}

func NewLinkGuard(client *redis.Client) *LinkGuard {
	return &LinkGuard{redis: client, now: time.Now}
}

// Consume returns true only for the first caller presenting id.
func (g *LinkGuard) Consume(ctx context.Context, id string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(g.now())
	if ttl <= 0 {
		return false, nil
	}

	ok, err := g.redis.SetNX(ctx, keyPrefix+id, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume link %s: %w", id, err)
	}
	return ok, nil
}

// Ping is used by the readiness check.
func (g *LinkGuard) Ping(ctx context.Context) error {
	return g.redis.Ping(ctx).Err()
}
