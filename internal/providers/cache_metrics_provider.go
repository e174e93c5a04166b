package providers

import (
	"strings"
	"time"
	"varietyd/internal/structures"
)

// MetricsCacheProvider counts response cache lookups per scope. The scope is
// the key up to the first colon, so "year:2023" and "year:2022" share one
// label and the label set stays bounded.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func cacheScope(key string) string {
	scope, _, _ := strings.Cut(key, ":")
	return scope
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(cacheScope(key))
	} else {
		c.metrics.IncCacheMisses(cacheScope(key))
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte, ttl time.Duration) {
	c.metrics.ObserveCacheTTL(cacheScope(key), ttl)
	c.inner.Set(key, value, ttl)
}

// NewInstrumentedCacheProvider returns the plain noop cache when caching is
// off so that disabled lookups are not reported as misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
