package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

// Client owns a cache and the queries registered against it. Create one per
// server request and one per client session; never share a Client between
// users.
type Client[T any] struct {
	cache *Cache[T]
	set   settings

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queries map[string]*Query[T]
	closed  bool
}

func NewClient[T any](opts ...Option) *Client[T] {
	s := settings{
		opts:  DefaultOptions(),
		log:   zerolog.Nop(),
		stats: stats.Noop{},
		now:   time.Now,
	}
	for _, o := range opts {
		o(&s)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client[T]{
		cache:   NewCache[T](),
		set:     s,
		ctx:     ctx,
		cancel:  cancel,
		queries: make(map[string]*Query[T]),
	}
}

// Cache exposes the underlying resource cache.
func (c *Client[T]) Cache() *Cache[T] { return c.cache }

// Query returns the query for key, registering fetch on first use. Later
// calls for the same key return the existing query and ignore fetch.
func (c *Client[T]) Query(key string, fetch Fetcher[T]) *Query[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok := c.queries[key]; ok {
		return q
	}
	q := newQuery(c.ctx, key, fetch, c.cache, c.set)
	c.queries[key] = q
	return q
}

// Lookup returns a registered query.
func (c *Client[T]) Lookup(key string) (*Query[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queries[key]
	return q, ok
}

// Prefetch fills key ahead of rendering.
func (c *Client[T]) Prefetch(ctx context.Context, key string, fetch Fetcher[T]) error {
	_, err := c.Query(key, fetch).Get(ctx)
	return err
}

// Invalidate marks key stale, refetching right away when the key has a
// registered query with subscribers.
func (c *Client[T]) Invalidate(ctx context.Context, key string) error {
	if q, ok := c.Lookup(key); ok {
		return q.Invalidate(ctx)
	}
	c.cache.Invalidate(key)
	c.set.stats.IncCounter(stats.MetricInvalidations, 1)
	return nil
}

// Close stops every interval refresh and abandons in-flight fetches.
func (c *Client[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	queries := make([]*Query[T], 0, len(c.queries))
	for _, q := range c.queries {
		queries = append(queries, q)
	}
	c.mu.Unlock()

	for _, q := range queries {
		q.stop()
	}
	c.cancel()
}
