// Package memstore keeps the game store in process memory.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	tracked []string
	custom  []store.CustomGame
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) TrackedSteamIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tracked), nil
}

func (s *Store) AddTrackedSteamID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.tracked, id) {
		s.tracked = append(s.tracked, id)
	}
	return nil
}

func (s *Store) RemoveTrackedSteamID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.tracked, id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.tracked = slices.Delete(s.tracked, i, i+1)
	return nil
}

func (s *Store) CustomGames(ctx context.Context) ([]store.CustomGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.custom), nil
}

func (s *Store) AddCustomGame(ctx context.Context, in game.CustomInput) (store.CustomGame, error) {
	if err := ctx.Err(); err != nil {
		return store.CustomGame{}, err
	}
	c := store.CustomGame{
		ID:        uuid.NewString(),
		Name:      in.Name,
		IconURL:   in.IconURL,
		Players:   in.Players,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.custom = append(s.custom, c)
	s.mu.Unlock()
	return c, nil
}

func (s *Store) UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) (store.CustomGame, error) {
	if err := ctx.Err(); err != nil {
		return store.CustomGame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexCustom(id)
	if i < 0 {
		return store.CustomGame{}, store.ErrNotFound
	}
	c := &s.custom[i]
	c.Name, c.IconURL, c.Players = in.Name, in.IconURL, in.Players
	return *c, nil
}

func (s *Store) RemoveCustomGame(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexCustom(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.custom = slices.Delete(s.custom, i, i+1)
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) indexCustom(id string) int {
	return slices.IndexFunc(s.custom, func(c store.CustomGame) bool { return c.ID == id })
}
