package gamequery

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/querycache"
)

type fakeReader struct {
	mu    sync.Mutex
	data  game.Data
	calls atomic.Int32
}

func (r *fakeReader) set(d game.Data) {
	r.mu.Lock()
	r.data = d
	r.mu.Unlock()
}

func (r *fakeReader) FetchGameData(context.Context) (game.Data, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data, nil
}

func list(counts ...int) []game.Game {
	games := make([]game.Game, 0, len(counts))
	for i, n := range counts {
		games = append(games, game.StoredCustom{Base: game.Base{ID: string(rune('a' + i)), Name: "Game", Count: n}})
	}
	return games
}

func TestSelectorsOnlyReportTheirSlice(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	r := &fakeReader{}
	r.set(game.Data{Games: list(5, 3), LastExecuted: t1})
	c := NewClient(querycache.WithRefetchInterval(0))
	defer c.Close()
	require.NoError(t, Prefetch(context.Background(), c, r))
	q := Games(c, r)

	var listRenders, timeRenders atomic.Int32
	games := SelectGames(q, func([]game.Game, error) { listRenders.Add(1) })
	defer games.Close()
	updated := SelectLastExecuted(q, func(time.Time, error) { timeRenders.Add(1) })
	defer updated.Close()

	assert.EqualValues(t, 1, listRenders.Load())
	assert.EqualValues(t, 1, timeRenders.Load())
	assert.EqualValues(t, 1, r.calls.Load(), "selectors read the prefetched entry")

	tests := []struct {
		name        string
		data        game.Data
		wantList    int32
		wantUpdated int32
	}{
		{"identical list, new time", game.Data{Games: list(5, 3), LastExecuted: t2}, 1, 2},
		{"same time in another zone", game.Data{Games: list(5, 3), LastExecuted: t2.In(time.FixedZone("X", 3600))}, 1, 2},
		{"changed count, same time", game.Data{Games: list(5, 4), LastExecuted: t2}, 2, 2},
		{"variant change only", game.Data{Games: []game.Game{
			game.StoredSteam{Base: game.Base{ID: "a", Name: "Game", Count: 5}},
			game.StoredCustom{Base: game.Base{ID: "b", Name: "Game", Count: 4}},
		}, LastExecuted: t2}, 3, 2},
	}
	for _, tt := range tests {
		r.set(tt.data)
		require.NoError(t, q.Refetch(context.Background()), tt.name)
		assert.Equal(t, tt.wantList, listRenders.Load(), tt.name)
		assert.Equal(t, tt.wantUpdated, timeRenders.Load(), tt.name)
	}

	got, ok := updated.Value()
	require.True(t, ok)
	assert.True(t, t2.Equal(got))
}

func TestFormatLastExecuted(t *testing.T) {
	at := time.Date(2024, 11, 5, 21, 7, 9, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want string
	}{
		{"zero", time.Time{}, time.UTC, "never"},
		{"utc", at, time.UTC, "Nov 5, 2024 21:07:09"},
		{"converted", at, time.FixedZone("UTC+2", 2*3600), "Nov 5, 2024 23:07:09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLastExecuted(tt.t, tt.loc))
		})
	}
}
