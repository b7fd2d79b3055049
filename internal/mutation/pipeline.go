// Package mutation runs writes against the remote game store and keeps the
// query cache consistent with them.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/stats"
)

// ErrRemoteWrite wraps every failure of the remote write itself. The cache
// is left untouched when it is returned.
var ErrRemoteWrite = errors.New("remote write failed")

// Pipeline validates, writes and then invalidates the games key.
type Pipeline struct {
	writer catalog.Writer
	client *gamequery.Client
	log    zerolog.Logger
	stats  stats.Collector
}

type Option func(*Pipeline)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithStats(c stats.Collector) Option {
	return func(p *Pipeline) { p.stats = stats.OrNoop(c) }
}

func New(w catalog.Writer, c *gamequery.Client, opts ...Option) *Pipeline {
	p := &Pipeline{writer: w, client: c, log: zerolog.Nop(), stats: stats.Noop{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Mutate applies op. Invalid input is returned as a *game.ValidationError
// without contacting the writer. A failed write is logged and wrapped in
// ErrRemoteWrite; it is not retried and nothing is invalidated. After a
// successful write the games key is invalidated, which refetches before
// Mutate returns when the key has subscribers.
func (p *Pipeline) Mutate(ctx context.Context, op Op) error {
	if err := op.Validate(); err != nil {
		return err
	}

	p.stats.IncCounter(stats.MetricMutations, 1)
	if err := op.apply(ctx, p.writer); err != nil {
		p.stats.IncCounter(stats.MetricMutationErrors, 1)
		p.log.Error().Err(err).Stringer("op", op).Msg("mutation failed")
		return fmt.Errorf("%w: %s: %w", ErrRemoteWrite, op, err)
	}

	if err := p.client.Invalidate(ctx, gamequery.Key); err != nil {
		p.log.Warn().Err(err).Stringer("op", op).Msg("refetch after mutation failed")
	}
	return nil
}
