// Package cache persists query snapshots on disk so that a client session
// can start from its last known state.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briangreenhill/gamepicker/internal/querycache"
)

// Entry is one cached document.
type Entry struct {
	SavedAt time.Time       `json:"saved_at"`
	Body    json.RawMessage `json:"body"`
}

// FileCache stores one JSON file per key.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates the cache directory. An empty dir means a
// "gamepicker" directory under the user cache directory.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "gamepicker")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Read returns the entry for key. An entry older than maxAge is returned
// with ok false; maxAge zero disables the check.
func (fc *FileCache) Read(key string, maxAge time.Duration) (*Entry, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if maxAge > 0 && fc.now().Sub(entry.SavedAt) > maxAge {
		return &entry, false
	}
	return &entry, true
}

// Write stores v under key, replacing the previous file atomically.
func (fc *FileCache) Write(key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	data, err := json.MarshalIndent(Entry{SavedAt: fc.now().UTC(), Body: body}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fc.dir, filepath.Base(fc.path(key))+".tmp.*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fc.path(key))
}

// Delete removes key. A missing key is not an error.
func (fc *FileCache) Delete(key string) error {
	if err := os.Remove(fc.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '&', '=', '#', '<', '>', '|', '*', '"', ' ':
			return '_'
		}
		return r
	}, key)
}

// SaveSnapshot writes snap under key.
func SaveSnapshot[T any](fc *FileCache, key string, snap querycache.Snapshot[T]) error {
	return fc.Write(key, snap)
}

// LoadSnapshot reads the snapshot under key if it was saved within maxAge.
func LoadSnapshot[T any](fc *FileCache, key string, maxAge time.Duration) (querycache.Snapshot[T], bool) {
	var snap querycache.Snapshot[T]
	entry, ok := fc.Read(key, maxAge)
	if !ok {
		return snap, false
	}
	if err := json.Unmarshal(entry.Body, &snap); err != nil {
		return snap, false
	}
	return snap, true
}
