package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
	"github.com/briangreenhill/gamepicker/internal/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openTemp(t) })
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddTrackedSteamID(ctx, "730"))
	c, err := s.AddCustomGame(ctx, game.CustomInput{Name: "Chess", IconURL: "https://example.com/c.png", Players: 2})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	ids, err := s.TrackedSteamIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"730"}, ids)

	games, err := s.CustomGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, c, games[0])
}
