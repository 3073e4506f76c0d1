package store

import (
	"context"
	"time"

	"sentinel/types"

	"github.com/patrickmn/go-cache"
)

// Cached keeps positive registration lookups for ttl. Rows are never updated by the bot,
// so a hit can only go stale through edits made directly against the database.
// Misses always reach the backend
type Cached struct {
	Store
	registrations *cache.Cache
}

func NewCached(backend Store, ttl time.Duration) *Cached {
	return &Cached{
		Store:         backend,
		registrations: cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) GetRegistration(ctx context.Context, serverID string) (*types.ServerRegistration, error) {
	if v, ok := c.registrations.Get(serverID); ok {
		reg := v.(types.ServerRegistration)
		return &reg, nil
	}

	reg, err := c.Store.GetRegistration(ctx, serverID)
	if err != nil {
		return nil, err
	}
	c.registrations.Set(serverID, *reg, cache.DefaultExpiration)
	return reg, nil
}

// Len is the number of cached registrations
func (c *Cached) Len() int {
	return c.registrations.ItemCount()
}
