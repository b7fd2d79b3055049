package querycache

import (
	"sort"
	"time"
)

// DehydratedQuery is one key's value as it left the server.
type DehydratedQuery[T any] struct {
	Key       string    `json:"key"`
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Snapshot carries successful entries from one Client to another.
type Snapshot[T any] struct {
	Queries []DehydratedQuery[T] `json:"queries"`
}

// Find returns the dehydrated entry for key.
func (s Snapshot[T]) Find(key string) (DehydratedQuery[T], bool) {
	for _, q := range s.Queries {
		if q.Key == key {
			return q, true
		}
	}
	return DehydratedQuery[T]{}, false
}

// Dehydrate captures every entry that holds a value and is not in error.
func (c *Client[T]) Dehydrate() Snapshot[T] {
	keys := c.cache.Keys()
	sort.Strings(keys)
	snap := Snapshot[T]{Queries: make([]DehydratedQuery[T], 0, len(keys))}
	for _, k := range keys {
		e, ok := c.cache.Get(k)
		if !ok || !e.HasValue || e.Err != nil {
			continue
		}
		snap.Queries = append(snap.Queries, DehydratedQuery[T]{Key: k, Value: e.Value, FetchedAt: e.FetchedAt})
	}
	return snap
}

// Hydrate seeds the cache from snap. A key that already holds a value at
// least as new as the snapshot's is left alone. It returns the keys seeded.
func (c *Client[T]) Hydrate(snap Snapshot[T]) []string {
	var seeded []string
	for _, q := range snap.Queries {
		if c.cache.seed(q.Key, q.Value, q.FetchedAt) {
			seeded = append(seeded, q.Key)
		} else {
			c.set.log.Debug().Str("query", q.Key).Time("snapshot", q.FetchedAt).Msg("kept newer cached value")
		}
	}
	return seeded
}
