package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/querycache"
)

func TestQueryClientPerRequest(t *testing.T) {
	p := querycache.NewProvider(func() *querycache.Client[game.Data] { return gamequery.NewClient() })
	var seen []*gamequery.Client
	h := QueryClient(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := RequestClient(r)
		require.True(t, ok)
		seen = append(seen, c)
	}))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestRequestClientMissing(t *testing.T) {
	_, ok := RequestClient(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRequireJSON(t *testing.T) {
	h := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"json", `{"id":"730"}`, "application/json; charset=utf-8", http.StatusNoContent},
		{"form", "id=730", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"empty body", "", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/games/steam", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
