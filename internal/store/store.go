// Package store defines persistence for tracked Steam ids and custom games.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/briangreenhill/gamepicker/internal/game"
)

// ErrNotFound is returned when an update or removal names a missing record.
var ErrNotFound = errors.New("store: not found")

// CustomGame is a persisted user-defined game.
type CustomGame struct {
	ID        string
	Name      string
	IconURL   string
	Players   int
	CreatedAt time.Time
}

// Game converts the record into its list variant.
func (c CustomGame) Game() game.Game {
	return game.StoredCustom{Base: game.Base{ID: c.ID, Name: c.Name, IconURL: c.IconURL, Count: c.Players}}
}

// Store persists the two user-owned collections. Adding an id that is
// already tracked is not an error. Listings are returned in insertion order.
type Store interface {
	TrackedSteamIDs(ctx context.Context) ([]string, error)
	AddTrackedSteamID(ctx context.Context, id string) error
	RemoveTrackedSteamID(ctx context.Context, id string) error

	CustomGames(ctx context.Context) ([]CustomGame, error)
	AddCustomGame(ctx context.Context, in game.CustomInput) (CustomGame, error)
	UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) (CustomGame, error)
	RemoveCustomGame(ctx context.Context, id string) error

	Close() error
}
