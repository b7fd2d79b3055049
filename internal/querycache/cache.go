// Package querycache keeps remote resources in a keyed cache and keeps them
// fresh: it fetches on first use, refetches stale or invalidated entries,
// refreshes on an interval while anyone is subscribed, collapses concurrent
// fetches, projects entries through selectors and moves snapshots between
// a server render and a long-lived client session.
package querycache

import (
	"sync"
	"time"
)

// Entry is the observable state of one key. Value stays readable while the
// entry is stale or in error.
type Entry[T any] struct {
	Value     T
	HasValue  bool
	FetchedAt time.Time
	IsStale   bool
	Err       error
	Fetching  bool

	version uint64
}

// Listener receives a copy of the entry after every change.
type Listener[T any] func(Entry[T])

type slot[T any] struct {
	entry    Entry[T]
	present  bool
	gen      uint64
	inflight int
	nextID   int
	subs     map[int]Listener[T]
}

// Cache holds one entry per key. Entries are replaced whole, never patched.
//
// Listeners are called one at a time in mutation order and must not call
// Set, Invalidate or Hydrate on the same cache from inside the callback.
type Cache[T any] struct {
	notifyMu sync.Mutex
	mu       sync.Mutex
	slots    map[string]*slot[T]
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{slots: make(map[string]*slot[T])}
}

func (c *Cache[T]) slot(key string) *slot[T] {
	s, ok := c.slots[key]
	if !ok {
		s = &slot[T]{subs: make(map[int]Listener[T])}
		c.slots[key] = s
	}
	return s
}

// Get returns the entry for key; ok is false until the key has been set,
// hydrated or started fetching.
func (c *Cache[T]) Get(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok || !s.present {
		return Entry[T]{}, false
	}
	return s.entry, true
}

// Set replaces the value of key and clears its stale and error state.
func (c *Cache[T]) Set(key string, value T, fetchedAt time.Time) {
	c.update(key, func(s *slot[T]) bool {
		s.entry.Value = value
		s.entry.HasValue = true
		s.entry.FetchedAt = fetchedAt
		s.entry.IsStale = false
		s.entry.Err = nil
		return true
	})
}

// Invalidate marks key stale without dropping its value. Fetches that
// started before the call will not be applied.
func (c *Cache[T]) Invalidate(key string) {
	c.update(key, func(s *slot[T]) bool {
		s.gen++
		if !s.present || s.entry.IsStale {
			return false
		}
		s.entry.IsStale = true
		return true
	})
}

// Subscribe registers l for changes to key.
func (c *Cache[T]) Subscribe(key string, l Listener[T]) (unsubscribe func()) {
	c.mu.Lock()
	s := c.slot(key)
	id := s.nextID
	s.nextID++
	s.subs[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(s.subs, id)
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of listeners on key.
func (c *Cache[T]) Subscribers(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[key]; ok {
		return len(s.subs)
	}
	return 0
}

// Keys lists every key that currently holds an entry.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.slots))
	for k, s := range c.slots {
		if s.present {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Cache[T]) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot(key).gen
}

// begin records that a fetch for key is in flight.
func (c *Cache[T]) begin(key string) {
	c.update(key, func(s *slot[T]) bool {
		s.inflight++
		changed := !s.present || !s.entry.Fetching
		s.entry.Fetching = true
		return changed
	})
}

// settle applies a finished fetch started under generation gen. A result
// from an older generation only clears the in-flight marker.
func (c *Cache[T]) settle(key string, gen uint64, value T, err error, at time.Time) (applied bool) {
	c.update(key, func(s *slot[T]) bool {
		if s.inflight > 0 {
			s.inflight--
		}
		s.entry.Fetching = s.inflight > 0
		if gen != s.gen {
			return true
		}
		applied = true
		if err != nil {
			s.entry.Err = err
			return true
		}
		s.entry.Value = value
		s.entry.HasValue = true
		s.entry.FetchedAt = at
		s.entry.IsStale = false
		s.entry.Err = nil
		return true
	})
	return applied
}

// seed sets key unless it already holds a value at least as new as at.
func (c *Cache[T]) seed(key string, value T, at time.Time) (seeded bool) {
	c.update(key, func(s *slot[T]) bool {
		if s.present && s.entry.HasValue && !s.entry.FetchedAt.Before(at) {
			return false
		}
		s.entry.Value = value
		s.entry.HasValue = true
		s.entry.FetchedAt = at
		s.entry.IsStale = false
		s.entry.Err = nil
		seeded = true
		return true
	})
	return seeded
}

// update mutates the slot under lock and, when mutate reports a change,
// delivers the new entry to every listener before returning.
func (c *Cache[T]) update(key string, mutate func(*slot[T]) bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	s := c.slot(key)
	if !mutate(s) {
		c.mu.Unlock()
		return
	}
	s.present = true
	s.entry.version++
	entry := s.entry
	listeners := make([]Listener[T], 0, len(s.subs))
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(entry)
	}
}
