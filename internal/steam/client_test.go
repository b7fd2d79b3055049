package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithAPIURL(srv.URL), WithStoreURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	c, err := New("test-key", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestOwnedGames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "76561198177613149", r.URL.Query().Get("steamid"))
		assert.Equal(t, "1", r.URL.Query().Get("include_appinfo"))
		_, _ = w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":730,"name":"Counter-Strike 2","img_icon_url":"abc"},
			{"appid":570,"name":"","img_icon_url":""}]}}`))
	})
	c := newTestClient(t, mux)

	games, err := c.OwnedGames(context.Background(), "76561198177613149")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, OwnedGame{
		AppID:   730,
		Name:    "Counter-Strike 2",
		IconURL: "https://media.steampowered.com/steamcommunity/public/images/apps/730/abc.jpg",
	}, games[0])
	assert.Equal(t, "unknown", games[1].Name)
	assert.Empty(t, games[1].IconURL)
}

func TestPlayerCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUserStats/GetNumberOfCurrentPlayers/v1", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("appid") {
		case "730":
			_, _ = w.Write([]byte(`{"response":{"player_count":812345,"result":1}}`))
		case "1":
			_, _ = w.Write([]byte(`{"response":{"result":42}}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})
	c := newTestClient(t, mux)

	n, err := c.PlayerCount(context.Background(), 730)
	require.NoError(t, err)
	assert.Equal(t, 812345, n)

	_, err = c.PlayerCount(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoPlayerCount)

	_, err = c.PlayerCount(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestAppDetailsMemoized(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("appids") {
		case "440":
			_, _ = w.Write([]byte(`{"440":{"success":true,"data":{"name":"Team Fortress 2","capsule_imagev5":"https://cdn/440.jpg"}}}`))
		default:
			_, _ = w.Write([]byte(`{"999":{"success":false}}`))
		}
	})
	c := newTestClient(t, mux, WithDetailsCache(8))

	for i := 0; i < 3; i++ {
		d, err := c.AppDetails(context.Background(), 440)
		require.NoError(t, err)
		assert.Equal(t, AppDetails{Name: "Team Fortress 2", CapsuleURL: "https://cdn/440.jpg"}, d)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err := c.AppDetails(context.Background(), 999)
	require.ErrorIs(t, err, ErrAppNotFound)
}

func TestAppDetailsFallsBackToHeaderImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"10":{"success":true,"data":{"name":"Counter-Strike","header_image":"https://cdn/10.jpg"}}}`))
	})
	c := newTestClient(t, mux)

	d, err := c.AppDetails(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/10.jpg", d.CapsuleURL)
}
