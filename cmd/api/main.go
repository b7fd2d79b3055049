// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/config"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/http/routes"
	"github.com/briangreenhill/gamepicker/internal/querycache"
	promstats "github.com/briangreenhill/gamepicker/internal/stats/prometheus"
	"github.com/briangreenhill/gamepicker/internal/steam"
	"github.com/briangreenhill/gamepicker/internal/store"
	"github.com/briangreenhill/gamepicker/internal/store/memstore"
	"github.com/briangreenhill/gamepicker/internal/store/pgstore"
	"github.com/briangreenhill/gamepicker/internal/store/sqlitestore"
	"github.com/briangreenhill/gamepicker/web"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}
	logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Bool("steam", cfg.HasSteam()).Msg("starting app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := promstats.New(reg)

	// Store
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	// Catalog
	opts := []catalog.Option{
		catalog.WithConcurrency(cfg.Steam.Concurrency),
		catalog.WithLogger(logger.With().Str("component", "catalog").Logger()),
		catalog.WithStats(metrics),
	}
	if cfg.HasSteam() {
		hc, err := steam.NewCachingHTTPClient(cfg.Steam.Timeout, cfg.Steam.ResponseCacheSize)
		if err != nil {
			logger.Fatal().Err(err).Msg("steam http client")
		}
		sc, err := steam.New(cfg.Steam.Key,
			steam.WithHTTPClient(hc),
			steam.WithAPIURL(cfg.Steam.APIURL),
			steam.WithStoreURL(cfg.Steam.StoreURL),
			steam.WithDetailsCache(cfg.Steam.DetailsCacheSize),
			steam.WithLogger(logger.With().Str("component", "steam").Logger()),
			steam.WithStats(metrics),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("steam client")
		}
		opts = append(opts, catalog.WithSteam(sc, cfg.Steam.UserID))
	}
	cat := catalog.New(st, opts...)

	// Query clients: one per request, closed when the request ends.
	queryLog := logger.With().Str("component", "querycache").Logger()
	queries := querycache.NewProvider(func() *querycache.Client[game.Data] {
		return gamequery.NewClient(
			querycache.WithStaleTime(cfg.Query.StaleTime),
			querycache.WithRefetchInterval(cfg.Query.RefetchInterval),
			querycache.WithRetry(cfg.Query.Retry, querycache.DefaultRetryDelay),
			querycache.WithLogger(queryLog),
			querycache.WithStats(metrics),
		)
	})
	defer queries.Close()

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.SessionLifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	tmpl, err := web.Templates(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse templates")
	}

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:    sess,
		Tmpl:    tmpl,
		Catalog: cat,
		Queries: queries,
		Stats:   metrics,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	h := hlog.NewHandler(logger)(
		hlog.RequestIDHandler("req_id", "X-Request-Id")(
			hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
				hlog.FromRequest(r).Info().
					Str("method", r.Method).
					Stringer("url", r.URL).
					Int("status", status).
					Int("size", size).
					Dur("duration", d).
					Msg("request")
			})(s.Handler())))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("serve")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return pgstore.Open(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlitestore.Open(cfg.SQLitePath)
	default:
		return memstore.New(), nil
	}
}
