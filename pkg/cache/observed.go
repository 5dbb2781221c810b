package cache

import (
	"context"
	"time"

	"github.com/matzehuels/sheetcalc/pkg/observability"
)

// Observed wraps c so that every lookup and write is reported to the
// registered observability.CacheHooks. The key type passed to the hooks is
// the kind prefix of the key, such as "values" or "graph".
func Observed(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &observed{inner: c}
}

type observed struct {
	inner Cache
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (o *observed) Delete(ctx context.Context, key string) error {
	return o.inner.Delete(ctx, key)
}

func (o *observed) Close() error {
	return o.inner.Close()
}
