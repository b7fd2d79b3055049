package routes

import (
	"html/template"
	"net/http"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	appmw "github.com/briangreenhill/gamepicker/internal/http/middleware"
	"github.com/briangreenhill/gamepicker/internal/mutation"
	"github.com/briangreenhill/gamepicker/internal/querycache"
	"github.com/briangreenhill/gamepicker/internal/stats"
)

type Server struct {
	Router  *chi.Mux
	Sess    *scs.SessionManager
	Tmpl    *template.Template
	Catalog catalog.ReadWriter
	Queries *querycache.Provider[game.Data]
	Stats   stats.Collector
}

type ServerOptions struct {
	Sess    *scs.SessionManager
	Tmpl    *template.Template
	Catalog catalog.ReadWriter
	Queries *querycache.Provider[game.Data]
	Stats   stats.Collector
	Metrics http.Handler // served on /metrics when set
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:  r,
		Sess:    opts.Sess,
		Tmpl:    opts.Tmpl,
		Catalog: opts.Catalog,
		Queries: opts.Queries,
		Stats:   stats.OrNoop(opts.Stats),
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(appmw.QueryClient(s.Queries))

		pr.Get("/", s.handleHome)
		pr.Post("/games/steam", s.handleAddSteamForm)
		pr.Post("/games/custom", s.handleAddCustomForm)
		pr.Post("/games/custom/{id}", s.handleEditCustomForm)
		pr.Post("/games/{kind}/{id}/delete", s.handleRemoveForm)

		pr.Route("/api/games", func(api chi.Router) {
			api.Get("/", s.handleAPIGames)
			api.Get("/snapshot", s.handleAPISnapshot)
			api.Group(func(w chi.Router) {
				w.Use(appmw.RequireJSON)
				w.Post("/steam", s.handleAPIAddSteam)
				w.Post("/custom", s.handleAPIAddCustom)
				w.Put("/custom/{id}", s.handleAPIUpdateCustom)
				w.Delete("/{kind}/{id}", s.handleAPIRemove)
			})
		})
	})

	return s
}

// Handler wraps the router with session loading.
func (s *Server) Handler() http.Handler {
	return s.Sess.LoadAndSave(s.Router)
}

// request returns the request's query client, the games query bound to the
// catalog and a mutation pipeline that invalidates that client.
func (s *Server) request(r *http.Request) (*gamequery.Client, *gamequery.Query, *mutation.Pipeline, bool) {
	c, ok := appmw.RequestClient(r)
	if !ok {
		return nil, nil, nil, false
	}
	p := mutation.New(s.Catalog, c, mutation.WithLogger(*hlog.FromRequest(r)), mutation.WithStats(s.Stats))
	return c, gamequery.Games(c, s.Catalog), p, true
}

func logger(r *http.Request) *zerolog.Logger {
	return hlog.FromRequest(r)
}
