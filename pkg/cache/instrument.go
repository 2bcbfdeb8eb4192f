package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/slngraph/pkg/observability"
)

// instrumented reports cache traffic to the registered cache hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so every Get and Set is reported through
// observability.Cache(). The key type passed to the hooks is the key
// segment before the first colon after any scope prefix.
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{Cache: c}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return key
	}
	return parts[len(parts)-2]
}
