package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/cache"
	"github.com/briangreenhill/gamepicker/internal/config"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/mutation"
	"github.com/briangreenhill/gamepicker/internal/querycache"
	"github.com/briangreenhill/gamepicker/internal/remote"
	"github.com/briangreenhill/gamepicker/internal/stats/logger"
)

var (
	// Global flags.
	serverURL string
	verbose   bool
	timeout   time.Duration
	noCache   bool
)

var rootCmd = &cobra.Command{
	Use:   "gamepicker",
	Short: "List and edit your games by current player count",
	Long: `gamepicker talks to a gamepicker server. It lists owned and tracked
Steam games together with custom games, sorted by how many people are
playing them, and lets you add, edit and remove entries.

The server URL defaults to $GAMEPICKER_SERVER. The last list is kept
under $GAMEPICKER_CACHE_DIR so that a new run can show it without asking
the server while it is still fresh.

Examples:
  # Show the list once
  gamepicker list

  # Keep the list on screen, refreshing every minute
  gamepicker watch

  # Track a Steam game and add a board game
  gamepicker add steam 730
  gamepicker add custom --name Chess --icon-url https://example.com/chess.png --players 2`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "gamepicker server URL (overrides $GAMEPICKER_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for each server request")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "do not read or write the on-disk snapshot")
}

// session is the CLI's single long-lived query client plus what it needs
// to read and write through the server.
type session struct {
	cfg      *config.ClientConfig
	remote   *remote.Client
	queries  *querycache.Provider[game.Data]
	client   *gamequery.Client
	games    *gamequery.Query
	pipeline *mutation.Pipeline
	disk     *cache.FileCache // nil when disabled
	log      zerolog.Logger
}

func newSession() (*session, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server = serverURL
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	rc, err := remote.New(cfg.Server)
	if err != nil {
		return nil, err
	}
	metrics := logger.New(log.With().Str("component", "stats").Logger())

	queries := querycache.NewProvider(func() *querycache.Client[game.Data] {
		return gamequery.NewClient(
			querycache.WithStaleTime(cfg.Query.StaleTime),
			querycache.WithRefetchInterval(cfg.Query.RefetchInterval),
			querycache.WithRetry(cfg.Query.Retry, querycache.DefaultRetryDelay),
			querycache.WithLogger(log.With().Str("component", "querycache").Logger()),
			querycache.WithStats(metrics),
		)
	})
	client := queries.ForSession()

	var disk *cache.FileCache
	if !noCache {
		if disk, err = cache.NewFileCache(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Msg("snapshot cache disabled")
			disk = nil
		}
	}

	return &session{
		cfg:      cfg,
		remote:   rc,
		queries:  queries,
		client:   client,
		games:    gamequery.Games(client, rc),
		pipeline: mutation.New(rc, client, mutation.WithLogger(log), mutation.WithStats(metrics)),
		disk:     disk,
		log:      log,
	}, nil
}

func (s *session) Close() {
	s.queries.Close()
}

func (s *session) snapshotKey() string {
	return "snapshot-" + s.cfg.Server
}

// restore seeds the client from the last saved snapshot for this server.
func (s *session) restore() {
	if s.disk == nil {
		return
	}
	snap, ok := cache.LoadSnapshot[game.Data](s.disk, s.snapshotKey(), s.cfg.CacheMaxAge)
	if !ok {
		return
	}
	if seeded := s.client.Hydrate(snap); len(seeded) > 0 {
		s.log.Debug().Strs("queries", seeded).Msg("restored snapshot from disk")
	}
}

// persist saves the client's current values for the next run.
func (s *session) persist() {
	if s.disk == nil {
		return
	}
	if err := cache.SaveSnapshot(s.disk, s.snapshotKey(), s.client.Dehydrate()); err != nil {
		s.log.Warn().Err(err).Msg("save snapshot")
	}
}

// forget drops the saved snapshot after a write made it outdated.
func (s *session) forget() {
	if s.disk == nil {
		return
	}
	if err := s.disk.Delete(s.snapshotKey()); err != nil {
		s.log.Warn().Err(err).Msg("drop snapshot")
	}
}

func withSession(run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer s.Close()
		return run(cmd, args, s)
	}
}
