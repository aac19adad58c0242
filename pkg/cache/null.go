package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It stands in when layouts should always be
// recomputed and remembers why, so callers can report it.
type NullCache struct {
	// Reason says why caching is off, e.g. "--no-cache" or
	// "redis unavailable".
	Reason string
}

// NewNullCache returns a cache that is disabled for reason.
func NewNullCache(reason string) Cache {
	return &NullCache{Reason: reason}
}

// Disabled reports whether c is a NullCache and, if so, why.
func Disabled(c Cache) (string, bool) {
	nc, ok := c.(*NullCache)
	if !ok {
		return "", false
	}
	return nc.Reason, true
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
