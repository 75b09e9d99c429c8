package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"

	"logistics-scheduler-service/internal/ports"
)

// MemoryDistanceCache keeps directions in a bounded in-process freecache.
type MemoryDistanceCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewMemoryDistanceCache allocates sizeMB megabytes; a zero ttl never expires.
func NewMemoryDistanceCache(sizeMB int, ttl time.Duration) *MemoryDistanceCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &MemoryDistanceCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   int(ttl.Seconds()),
	}
}

func (c *MemoryDistanceCache) Get(_ context.Context, key string) (ports.DistanceResult, bool, error) {
	b, err := c.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, err
	}

	r, err := decodeResult(b)
	if err != nil {
		return ports.DistanceResult{}, false, err
	}
	return r, true, nil
}

func (c *MemoryDistanceCache) Put(_ context.Context, key string, r ports.DistanceResult) error {
	b, err := encodeResult(r)
	if err != nil {
		return err
	}
	return c.cache.Set([]byte(key), b, c.ttl)
}

// EntryCount reports the number of live entries.
func (c *MemoryDistanceCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
