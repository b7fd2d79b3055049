package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	scs "github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/http/routes"
	"github.com/briangreenhill/gamepicker/internal/querycache"
	"github.com/briangreenhill/gamepicker/internal/store/memstore"
	"github.com/briangreenhill/gamepicker/web"
)

func TestPrintGames(t *testing.T) {
	var buf bytes.Buffer
	printGames(&buf, []game.Game{
		game.StoredSteam{Base: game.Base{ID: "730", Name: "Counter-Strike 2", Count: 900}},
		game.FetchedSteam{Base: game.Base{ID: "570", Name: "Dota 2", Count: 400}},
		game.StoredCustom{Base: game.Base{ID: "c1", Name: "Chess", Count: 2}},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "PLAYERS")
	assert.Contains(t, lines[1], "tracked")
	assert.Contains(t, lines[2], "owned")
	assert.Contains(t, lines[3], "custom")
}

func TestFindCustom(t *testing.T) {
	games := []game.Game{
		game.StoredSteam{Base: game.Base{ID: "c1"}},
		game.StoredCustom{Base: game.Base{ID: "c1", Name: "Chess"}},
	}
	c, err := findCustom(games, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Chess", c.Name)

	_, err = findCustom(games, "nope")
	require.Error(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String() + errOut.String(), err
}

func TestCommandsAgainstServer(t *testing.T) {
	cacheDir := t.TempDir()
	t.Setenv("GAMEPICKER_CACHE_DIR", cacheDir)

	tmpl, err := web.Templates(nil)
	require.NoError(t, err)
	st := memstore.New()
	s := routes.New(routes.ServerOptions{
		Sess:    scs.New(),
		Tmpl:    tmpl,
		Catalog: catalog.New(st),
		Queries: querycache.NewProvider(func() *querycache.Client[game.Data] { return gamequery.NewClient() }),
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "add", "custom", "--name", "Chess", "--icon-url", "https://example.com/c.png", "--players", "0")
	require.Error(t, err)
	assert.Contains(t, out, "players: players must be at least 1")

	out, err = run(t, "--server", srv.URL, "add", "custom", "--name", "Chess", "--icon-url", "https://example.com/c.png", "--players", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Chess")

	games, err := st.CustomGames(t.Context())
	require.NoError(t, err)
	require.Len(t, games, 1)
	id := games[0].ID

	out, err = run(t, "--server", srv.URL, "edit", id, "--players", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Chess")

	out, err = run(t, "--server", srv.URL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Chess")
	assert.Contains(t, out, "Last updated:")

	games, err = st.CustomGames(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, games[0].Players)

	saved, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, saved, 1, "list saves its snapshot")

	out, err = run(t, "--server", srv.URL, "remove", "storedCustom", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed storedCustom "+id)

	saved, err = os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, saved, "a write drops the saved snapshot")

	_, err = run(t, "--server", srv.URL, "remove", "fetchedSteam", "730")
	require.Error(t, err)
}

func TestListFromSavedSnapshot(t *testing.T) {
	t.Setenv("GAMEPICKER_CACHE_DIR", t.TempDir())

	tmpl, err := web.Templates(nil)
	require.NoError(t, err)
	st := memstore.New()
	_, err = st.AddCustomGame(t.Context(), game.CustomInput{Name: "Go", IconURL: "https://example.com/go.png", Players: 2})
	require.NoError(t, err)
	s := routes.New(routes.ServerOptions{
		Sess:    scs.New(),
		Tmpl:    tmpl,
		Catalog: catalog.New(st),
		Queries: querycache.NewProvider(func() *querycache.Client[game.Data] { return gamequery.NewClient() }),
	})
	srv := httptest.NewServer(s.Handler())
	url := srv.URL

	_, err = run(t, "--server", url, "list")
	require.NoError(t, err)
	srv.Close()

	out, err := run(t, "--server", url, "list")
	require.NoError(t, err, "a fresh saved snapshot needs no server")
	assert.Contains(t, out, "Go")

	_, err = run(t, "--server", url, "--no-cache", "list")
	require.Error(t, err)
}
