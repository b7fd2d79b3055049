package middleware

import (
	"mime"
	"net/http"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/querycache"
)

// QueryClient gives every request its own query client and closes it when
// the handler returns. Nothing cached while serving one request is visible
// to another.
func QueryClient(p *querycache.Provider[game.Data]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := p.ForRequest()
			defer c.Close()
			next.ServeHTTP(w, r.WithContext(querycache.NewContext(r.Context(), c)))
		})
	}
}

// RequestClient returns the client installed by QueryClient.
func RequestClient(r *http.Request) (*gamequery.Client, bool) {
	return querycache.FromContext[game.Data](r.Context())
}

// RequireJSON rejects request bodies that are not JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
