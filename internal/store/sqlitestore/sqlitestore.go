// Package sqlitestore persists the game store in a SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracked_steam_games (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	steam_id   TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS custom_games (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	custom_id  TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	icon_url   TEXT NOT NULL,
	players    INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens the database at path and creates the tables when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) TrackedSteamIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT steam_id FROM tracked_steam_games ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list tracked: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tracked: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) AddTrackedSteamID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracked_steam_games (steam_id, created_at) VALUES (?, ?) ON CONFLICT(steam_id) DO NOTHING`,
		id, toMillis(s.now()))
	if err != nil {
		return fmt.Errorf("add tracked %s: %w", id, err)
	}
	return nil
}

func (s *Store) RemoveTrackedSteamID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_steam_games WHERE steam_id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove tracked %s: %w", id, err)
	}
	return requireAffected(res)
}

func (s *Store) CustomGames(ctx context.Context) ([]store.CustomGame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT custom_id, name, icon_url, players, created_at FROM custom_games ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list custom: %w", err)
	}
	defer rows.Close()

	var games []store.CustomGame
	for rows.Next() {
		c, err := scanCustom(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, c)
	}
	return games, rows.Err()
}

func (s *Store) AddCustomGame(ctx context.Context, in game.CustomInput) (store.CustomGame, error) {
	c := store.CustomGame{
		ID:        uuid.NewString(),
		Name:      in.Name,
		IconURL:   in.IconURL,
		Players:   in.Players,
		CreatedAt: fromMillis(toMillis(s.now())),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_games (custom_id, name, icon_url, players, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IconURL, c.Players, toMillis(c.CreatedAt))
	if err != nil {
		return store.CustomGame{}, fmt.Errorf("add custom: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) (store.CustomGame, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE custom_games SET name = ?, icon_url = ?, players = ? WHERE custom_id = ?`,
		in.Name, in.IconURL, in.Players, id)
	if err != nil {
		return store.CustomGame{}, fmt.Errorf("update custom %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return store.CustomGame{}, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT custom_id, name, icon_url, players, created_at FROM custom_games WHERE custom_id = ?`, id)
	c, err := scanCustom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.CustomGame{}, store.ErrNotFound
	}
	return c, err
}

func (s *Store) RemoveCustomGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_games WHERE custom_id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove custom %s: %w", id, err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustom(row scanner) (store.CustomGame, error) {
	var (
		c         store.CustomGame
		createdAt int64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.IconURL, &c.Players, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan custom: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
