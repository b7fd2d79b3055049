package steam

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultResponseCacheSize bounds how many responses the caching client keeps.
const DefaultResponseCacheSize = 1024

// responseCache is an httpcache.Cache that evicts the least recently used
// response once it holds size entries.
type responseCache struct {
	entries *lru.Cache[string, []byte]
}

var _ httpcache.Cache = (*responseCache)(nil)

func newResponseCache(size int) (*responseCache, error) {
	if size <= 0 {
		size = DefaultResponseCacheSize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &responseCache{entries: entries}, nil
}

func (c *responseCache) Get(key string) ([]byte, bool) { return c.entries.Get(key) }
func (c *responseCache) Set(key string, b []byte)      { c.entries.Add(key, b) }
func (c *responseCache) Delete(key string)             { c.entries.Remove(key) }

// NewCachingHTTPClient returns an http.Client that honours the cache headers
// Steam sends on store and community responses, keeping at most size
// responses. Requests marked no-store, such as player counts, bypass it.
func NewCachingHTTPClient(timeout time.Duration, size int) (*http.Client, error) {
	cache, err := newResponseCache(size)
	if err != nil {
		return nil, err
	}
	transport := httpcache.NewTransport(cache)
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
