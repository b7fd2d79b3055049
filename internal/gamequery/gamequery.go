// Package gamequery binds the "games" cache key to a catalog reader and
// exposes the two projections the list views use.
package gamequery

import (
	"context"
	"time"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/querycache"
)

// Key names the single cached resource.
const Key = "games"

type (
	Client   = querycache.Client[game.Data]
	Query    = querycache.Query[game.Data]
	Snapshot = querycache.Snapshot[game.Data]
)

// NewClient returns a query client for game data.
func NewClient(opts ...querycache.Option) *Client {
	return querycache.NewClient[game.Data](opts...)
}

// Games registers or returns the games query of c, fetched from r.
func Games(c *Client, r catalog.Reader) *Query {
	return c.Query(Key, r.FetchGameData)
}

// Prefetch fills the games entry of c ahead of rendering.
func Prefetch(ctx context.Context, c *Client, r catalog.Reader) error {
	return c.Prefetch(ctx, Key, r.FetchGameData)
}

// SelectGames follows the merged list.
func SelectGames(q *Query, onChange func([]game.Game, error)) *querycache.Selection[game.Data, []game.Game] {
	return querycache.Select(q,
		func(d game.Data) []game.Game { return d.Games },
		game.EqualLists,
		onChange,
	)
}

// SelectLastExecuted follows only the time the list was computed.
func SelectLastExecuted(q *Query, onChange func(time.Time, error)) *querycache.Selection[game.Data, time.Time] {
	return querycache.Select(q,
		func(d game.Data) time.Time { return d.LastExecuted },
		time.Time.Equal,
		onChange,
	)
}

// FormatLastExecuted renders the "last updated" label.
func FormatLastExecuted(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "never"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Jan 2, 2006 15:04:05")
}
