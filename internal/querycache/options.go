package querycache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

// Defaults for every query.
const (
	DefaultStaleTime       = 60 * time.Second
	DefaultRefetchInterval = 60 * time.Second
	DefaultRetryDelay      = time.Second
)

// Options is the fetch policy of a query. Retry is the number of extra
// attempts after a failed fetch; zero disables retrying.
type Options struct {
	StaleTime       time.Duration
	RefetchInterval time.Duration
	Retry           int
	RetryDelay      time.Duration
}

func DefaultOptions() Options {
	return Options{
		StaleTime:       DefaultStaleTime,
		RefetchInterval: DefaultRefetchInterval,
		RetryDelay:      DefaultRetryDelay,
	}
}

type settings struct {
	opts  Options
	log   zerolog.Logger
	stats stats.Collector
	now   func() time.Time
}

// Option configures a Client.
type Option func(*settings)

func WithOptions(o Options) Option {
	return func(s *settings) { s.opts = o }
}

func WithStaleTime(d time.Duration) Option {
	return func(s *settings) { s.opts.StaleTime = d }
}

func WithRefetchInterval(d time.Duration) Option {
	return func(s *settings) { s.opts.RefetchInterval = d }
}

func WithRetry(n int, delay time.Duration) Option {
	return func(s *settings) { s.opts.Retry, s.opts.RetryDelay = n, delay }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

func WithStats(c stats.Collector) Option {
	return func(s *settings) { s.stats = stats.OrNoop(c) }
}

// WithClock overrides the time source used for FetchedAt and staleness.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}
