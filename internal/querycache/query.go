package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

// maxChase bounds how many times a read follows a fetch that was overtaken
// by an invalidation.
const maxChase = 4

// ErrDiscarded is returned when every fetch a caller joined was overtaken by
// an invalidation.
var ErrDiscarded = errors.New("querycache: fetch result discarded after invalidation")

// Fetcher produces the whole value of a key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query is the fetch policy for one key of a Client's cache.
type Query[T any] struct {
	key   string
	fetch Fetcher[T]
	opts  Options
	cache *Cache[T]
	ctx   context.Context
	now   func() time.Time
	log   zerolog.Logger
	stats stats.Collector

	group singleflight.Group
	sched *Scheduler

	mu         sync.Mutex
	subs       int
	staleSeq   uint64
	staleTimer *time.Timer
	staleUnsub func()
}

func newQuery[T any](ctx context.Context, key string, fetch Fetcher[T], cache *Cache[T], s settings) *Query[T] {
	q := &Query[T]{
		key:   key,
		fetch: fetch,
		opts:  s.opts,
		cache: cache,
		ctx:   ctx,
		now:   s.now,
		log:   s.log.With().Str("query", key).Logger(),
		stats: s.stats,
	}
	q.sched = NewScheduler(s.opts.RefetchInterval, q.background)
	return q
}

func (q *Query[T]) Key() string { return q.key }

// Options returns the fetch policy in effect.
func (q *Query[T]) Options() Options { return q.opts }

// Entry returns the current cache entry.
func (q *Query[T]) Entry() (Entry[T], bool) { return q.cache.Get(q.key) }

// Stale reports whether e is due for a refetch.
func (q *Query[T]) Stale(e Entry[T]) bool {
	if !e.HasValue || e.IsStale {
		return true
	}
	return q.now().Sub(e.FetchedAt) >= q.opts.StaleTime
}

// Get returns the cached value, fetching first when the entry is missing or
// stale. On a failed fetch the last good value is returned with the error.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	if e, ok := q.cache.Get(q.key); ok && !q.Stale(e) {
		return e.Value, nil
	}
	err := q.Refetch(ctx)
	e, _ := q.cache.Get(q.key)
	return e.Value, err
}

// Refetch fetches the key now, joining any fetch already in flight for the
// current generation.
func (q *Query[T]) Refetch(ctx context.Context) error {
	for i := 0; i < maxChase; i++ {
		applied, err := q.fetchOnce(ctx)
		if applied {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return ErrDiscarded
}

// Invalidate marks the key stale. With active subscribers it refetches
// before returning; otherwise the next read refetches.
func (q *Query[T]) Invalidate(ctx context.Context) error {
	q.cache.Invalidate(q.key)
	q.stats.IncCounter(stats.MetricInvalidations, 1)
	if !q.Active() {
		return nil
	}
	return q.Refetch(ctx)
}

// Subscribe registers l and counts it as an active subscriber. While at
// least one subscriber exists the interval refresh runs and the entry is
// refetched as soon as it passes StaleTime. Subscribing to a missing or
// stale entry starts a fetch.
func (q *Query[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	unsub := q.cache.Subscribe(q.key, l)

	q.mu.Lock()
	q.subs++
	n := q.subs
	if n == 1 {
		q.sched.Start()
		q.staleUnsub = q.cache.Subscribe(q.key, q.rearm)
	}
	q.mu.Unlock()
	q.stats.SetGauge(stats.MetricSubscribers, int64(n))

	if e, ok := q.cache.Get(q.key); !ok || q.Stale(e) {
		go q.revalidate()
	} else if n == 1 {
		q.rearm(e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			q.mu.Lock()
			q.subs--
			n := q.subs
			if n == 0 {
				q.sched.Stop()
				q.releaseStaleLocked()
			}
			q.mu.Unlock()
			q.stats.SetGauge(stats.MetricSubscribers, int64(n))
		})
	}
}

// Active reports whether the query has subscribers.
func (q *Query[T]) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.subs > 0
}

func (q *Query[T]) stop() {
	q.sched.Stop()
	q.mu.Lock()
	q.releaseStaleLocked()
	q.mu.Unlock()
}

// rearm schedules a refetch for the moment e passes StaleTime. Only a
// settled, healthy value arms the timer: an invalidated entry is refetched
// by Invalidate, and a failed one waits for the interval or the next read.
func (q *Query[T]) rearm(e Entry[T]) {
	if !e.HasValue || e.Fetching || e.IsStale || e.Err != nil || q.opts.StaleTime <= 0 {
		return
	}
	delay := max(e.FetchedAt.Add(q.opts.StaleTime).Sub(q.now()), 0)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.subs == 0 {
		return
	}
	if q.staleTimer != nil {
		q.staleTimer.Stop()
	}
	q.staleSeq++
	seq := q.staleSeq
	q.staleTimer = time.AfterFunc(delay, func() { q.expire(seq) })
}

// expire refetches unless the timer was re-armed or released meanwhile.
func (q *Query[T]) expire(seq uint64) {
	q.mu.Lock()
	current := q.subs > 0 && seq == q.staleSeq
	q.mu.Unlock()
	if !current {
		return
	}
	q.log.Debug().Msg("stale with active subscribers, refetching")
	q.background()
}

func (q *Query[T]) releaseStaleLocked() {
	q.staleSeq++
	if q.staleTimer != nil {
		q.staleTimer.Stop()
		q.staleTimer = nil
	}
	if q.staleUnsub != nil {
		q.staleUnsub()
		q.staleUnsub = nil
	}
}

// revalidate fetches unless another fetch made the entry fresh meanwhile.
func (q *Query[T]) revalidate() {
	if e, ok := q.cache.Get(q.key); ok && !q.Stale(e) {
		return
	}
	q.background()
}

func (q *Query[T]) background() {
	if err := q.Refetch(q.ctx); err != nil && q.ctx.Err() == nil {
		q.log.Warn().Err(err).Msg("background refetch failed")
	}
}

func (q *Query[T]) fetchOnce(ctx context.Context) (bool, error) {
	gen := q.cache.generation(q.key)
	ch := q.group.DoChan(fmt.Sprintf("%s#%d", q.key, gen), func() (any, error) {
		return q.run(gen)
	})
	select {
	case res := <-ch:
		if res.Shared {
			q.stats.IncCounter(stats.MetricFetchShared, 1)
		}
		applied, _ := res.Val.(bool)
		return applied, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// run performs one fetch on the client's context so that a caller giving up
// does not abort the fetch for everyone else sharing it.
func (q *Query[T]) run(gen uint64) (bool, error) {
	q.cache.begin(q.key)
	start := time.Now()
	v, err := q.attempt()
	q.stats.ObserveHistogram(stats.MetricFetchSeconds, time.Since(start).Seconds())
	q.stats.IncCounter(stats.MetricFetches, 1)

	applied := q.cache.settle(q.key, gen, v, err, q.now())
	switch {
	case !applied:
		q.stats.IncCounter(stats.MetricFetchDiscarded, 1)
		q.log.Debug().Uint64("generation", gen).Msg("fetch overtaken by invalidation")
	case err != nil:
		q.stats.IncCounter(stats.MetricFetchErrors, 1)
		q.log.Error().Err(err).Msg("fetch failed")
	default:
		q.log.Debug().Dur("took", time.Since(start)).Msg("fetched")
	}
	return applied, err
}

func (q *Query[T]) attempt() (T, error) {
	var (
		v   T
		err error
	)
	for i := 0; i <= q.opts.Retry; i++ {
		if i > 0 {
			select {
			case <-time.After(q.opts.RetryDelay):
			case <-q.ctx.Done():
				return v, q.ctx.Err()
			}
		}
		v, err = q.fetch(q.ctx)
		if err == nil {
			return v, nil
		}
	}
	return v, err
}
