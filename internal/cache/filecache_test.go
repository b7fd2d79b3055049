package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/querycache"
)

func TestReadWrite(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fc.Write("a/b", map[string]int{"n": 1}))
	entry, ok := fc.Read("a/b", time.Minute)
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(entry.Body))

	entries, err := os.ReadDir(fc.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "a_b.json", entries[0].Name())
}

func TestReadExpired(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return base }
	require.NoError(t, fc.Write("k", 1))

	fc.now = func() time.Time { return base.Add(2 * time.Hour) }
	entry, ok := fc.Read("k", time.Hour)
	assert.False(t, ok)
	require.NotNil(t, entry)

	_, ok = fc.Read("k", 0)
	assert.True(t, ok)
}

func TestReadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	fc, err := NewFileCache(dir)
	require.NoError(t, err)

	_, ok := fc.Read("missing", 0)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o600))
	_, ok = fc.Read("bad", 0)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fc.Write("k", 1))
	require.NoError(t, fc.Delete("k"))
	require.NoError(t, fc.Delete("k"))
	_, ok := fc.Read("k", 0)
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := querycache.NewClient[game.Data]()
	defer src.Close()
	src.Cache().Set("games", game.Data{
		Games:        []game.Game{game.StoredCustom{Base: game.Base{ID: "c1", Name: "Chess", Count: 2}}},
		LastExecuted: at,
	}, at)

	require.NoError(t, SaveSnapshot(fc, "session", src.Dehydrate()))
	snap, ok := LoadSnapshot[game.Data](fc, "session", time.Hour)
	require.True(t, ok)

	dst := querycache.NewClient[game.Data]()
	defer dst.Close()
	assert.Equal(t, []string{"games"}, dst.Hydrate(snap))
	e, ok := dst.Cache().Get("games")
	require.True(t, ok)
	assert.True(t, at.Equal(e.FetchedAt))
	require.Len(t, e.Value.Games, 1)
	assert.Equal(t, "Chess", e.Value.Games[0].Fields().Name)
}
