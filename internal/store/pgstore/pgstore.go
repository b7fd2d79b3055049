// Package pgstore persists the game store in Postgres through a pgx pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracked_steam_games (
	seq        BIGSERIAL PRIMARY KEY,
	steam_id   TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS custom_games (
	seq        BIGSERIAL PRIMARY KEY,
	custom_id  TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	icon_url   TEXT NOT NULL,
	players    INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to databaseURL and creates the tables when missing.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) TrackedSteamIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT steam_id FROM tracked_steam_games ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list tracked: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tracked: %w", err)
	}
	return ids, nil
}

func (s *Store) AddTrackedSteamID(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tracked_steam_games (steam_id) VALUES ($1) ON CONFLICT (steam_id) DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("add tracked %s: %w", id, err)
	}
	return nil
}

func (s *Store) RemoveTrackedSteamID(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_steam_games WHERE steam_id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove tracked %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CustomGames(ctx context.Context) ([]store.CustomGame, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT custom_id, name, icon_url, players, created_at FROM custom_games ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list custom: %w", err)
	}
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.CustomGame, error) {
		var c store.CustomGame
		err := row.Scan(&c.ID, &c.Name, &c.IconURL, &c.Players, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list custom: %w", err)
	}
	return games, nil
}

func (s *Store) AddCustomGame(ctx context.Context, in game.CustomInput) (store.CustomGame, error) {
	c := store.CustomGame{
		ID:        uuid.NewString(),
		Name:      in.Name,
		IconURL:   in.IconURL,
		Players:   in.Players,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO custom_games (custom_id, name, icon_url, players, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.IconURL, c.Players, c.CreatedAt)
	if err != nil {
		return store.CustomGame{}, fmt.Errorf("add custom: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) (store.CustomGame, error) {
	var c store.CustomGame
	err := s.pool.QueryRow(ctx,
		`UPDATE custom_games SET name = $2, icon_url = $3, players = $4 WHERE custom_id = $1
		 RETURNING custom_id, name, icon_url, players, created_at`,
		id, in.Name, in.IconURL, in.Players,
	).Scan(&c.ID, &c.Name, &c.IconURL, &c.Players, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.CustomGame{}, store.ErrNotFound
	}
	if err != nil {
		return store.CustomGame{}, fmt.Errorf("update custom %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) RemoveCustomGame(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM custom_games WHERE custom_id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove custom %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Reset empties both tables. Tests use it to start from a clean database.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE tracked_steam_games, custom_games`)
	return err
}
