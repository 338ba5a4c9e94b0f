package headhunter

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// cacheEntry pairs a loaded value with its fetch time. The value is served
// as-is while now-fetchedAt < ttl and refreshed synchronously on the next
// access after that.
type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Cache is the TTL cache in front of every outbound job-posting-API call.
// Expired entries are refreshed by the request that finds them expired; there
// is no background refresh and no stampede protection, so concurrent misses
// on one key may each invoke the loader.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache builds a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// CacheKey builds the canonical key for an endpoint call: the endpoint path
// followed by its parameter pairs in sorted order, so parameter ordering at
// the call site cannot split the cache.
func CacheKey(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		values := append([]string{}, params[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString("|")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(v)
		}
	}
	return b.String()
}

// Get returns the cached value for key when it is fresh; otherwise it runs
// loader synchronously, stores the result, and returns it. Loader failures
// propagate to the caller and leave the cache untouched, so a failed upstream
// call never masks a previously good entry with a partial one.
func (c *Cache) Get(key string, loader func() (any, error)) (any, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()

	return value, nil
}

// Len reports the number of live entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
