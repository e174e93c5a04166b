package providers

import (
	"time"
	"unsafe"
	"varietyd/internal/structures"

	"github.com/coocood/freecache"
)

// CacheProviderInterface stores encoded responses. Set keeps value for at
// most ttl; callers pass how long the data behind the response stays valid.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

type CacheProvider struct {
	cache *freecache.Cache
	// upper bound in seconds
	maxTTL int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	maxTTL := max(int(conf.Cache.TTL.Seconds()), 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, max TTL=%ds", conf.Cache.Size, maxTTL)

	return &CacheProvider{
		cache:  freecache.NewCache(sizeBytes),
		maxTTL: maxTTL,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache: it copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set rounds ttl down to whole seconds, the resolution freecache expires
// entries at. Anything shorter than a second is not stored.
func (c *CacheProvider) Set(key string, value []byte, ttl time.Duration) {
	expire := min(c.maxTTL, int(ttl/time.Second))
	if expire < 1 {
		return
	}
	_ = c.cache.Set(unsafeStringToBytes(key), value, expire)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)             { return nil, false }
func (n *noopCache) Set(_ string, _ []byte, _ time.Duration) {}
