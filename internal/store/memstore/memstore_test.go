package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
	"github.com/briangreenhill/gamepicker/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestListingsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.AddCustomGame(ctx, game.CustomInput{Name: "Chess", IconURL: "https://example.com/c.png", Players: 2})
	require.NoError(t, err)

	games, err := s.CustomGames(ctx)
	require.NoError(t, err)
	games[0].Name = "mutated"

	again, err := s.CustomGames(ctx)
	require.NoError(t, err)
	require.Equal(t, "Chess", again[0].Name)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().TrackedSteamIDs(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
