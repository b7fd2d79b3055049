// Package storetest is the behaviour every store.Store implementation shares.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
)

// Run exercises s, which must start empty.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("tracked ids keep insertion order and ignore duplicates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AddTrackedSteamID(ctx, "730"))
		require.NoError(t, s.AddTrackedSteamID(ctx, "440"))
		require.NoError(t, s.AddTrackedSteamID(ctx, "730"))

		ids, err := s.TrackedSteamIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"730", "440"}, ids)
	})

	t.Run("removing tracked ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AddTrackedSteamID(ctx, "730"))
		require.NoError(t, s.RemoveTrackedSteamID(ctx, "730"))
		require.ErrorIs(t, s.RemoveTrackedSteamID(ctx, "730"), store.ErrNotFound)

		ids, err := s.TrackedSteamIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("custom game lifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.AddCustomGame(ctx, game.CustomInput{Name: "Chess", IconURL: "https://example.com/chess.png", Players: 2})
		require.NoError(t, err)
		require.NotEmpty(t, a.ID)
		b, err := s.AddCustomGame(ctx, game.CustomInput{Name: "Go", IconURL: "https://example.com/go.png", Players: 2})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		updated, err := s.UpdateCustomGame(ctx, a.ID, game.CustomInput{Name: "Chess 960", IconURL: "https://example.com/960.png", Players: 4})
		require.NoError(t, err)
		assert.Equal(t, a.ID, updated.ID)
		assert.Equal(t, "Chess 960", updated.Name)
		assert.Equal(t, 4, updated.Players)

		games, err := s.CustomGames(ctx)
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, a.ID, games[0].ID)
		assert.Equal(t, "Chess 960", games[0].Name)
		assert.Equal(t, "https://example.com/960.png", games[0].IconURL)
		assert.Equal(t, b.ID, games[1].ID)

		require.NoError(t, s.RemoveCustomGame(ctx, a.ID))
		games, err = s.CustomGames(ctx)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, b.ID, games[0].ID)
	})

	t.Run("missing custom games", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpdateCustomGame(ctx, "nope", game.CustomInput{Name: "x", IconURL: "https://example.com/x.png", Players: 1})
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.RemoveCustomGame(ctx, "nope"), store.ErrNotFound)
	})
}
