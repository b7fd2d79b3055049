// Package catalog computes the game list from the store and Steam, and
// applies writes to the store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/stats"
	"github.com/briangreenhill/gamepicker/internal/steam"
	"github.com/briangreenhill/gamepicker/internal/store"
)

// DefaultConcurrency bounds parallel Steam lookups per fetch.
const DefaultConcurrency = 8

// Placeholder reasons.
const (
	ReasonFormat   = "format"
	ReasonAPIError = "API error"
)

// Reader computes the whole game list in one call.
type Reader interface {
	FetchGameData(ctx context.Context) (game.Data, error)
}

// Writer applies one change to the persisted games. Implementations reject
// invalid input with a *game.ValidationError before touching storage.
type Writer interface {
	AddTrackedSteamGame(ctx context.Context, id string) error
	AddCustomGame(ctx context.Context, in game.CustomInput) error
	UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) error
	RemoveGame(ctx context.Context, ref game.Ref) error
}

// ReadWriter is both halves.
type ReadWriter interface {
	Reader
	Writer
}

// SteamAPI is the part of the Steam client the catalog needs.
type SteamAPI interface {
	OwnedGames(ctx context.Context, steamID string) ([]steam.OwnedGame, error)
	PlayerCount(ctx context.Context, appID int) (int, error)
	AppDetails(ctx context.Context, appID int) (steam.AppDetails, error)
}

type Service struct {
	store       store.Store
	steam       SteamAPI
	steamUserID string
	concurrency int
	now         func() time.Time
	log         zerolog.Logger
	stats       stats.Collector
}

var _ ReadWriter = (*Service)(nil)

type Option func(*Service)

// WithSteam enables owned games for userID and enrichment of tracked games.
// Without it tracked games are listed as placeholders.
func WithSteam(api SteamAPI, userID string) Option {
	return func(s *Service) { s.steam, s.steamUserID = api, userID }
}

func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithStats(c stats.Collector) Option {
	return func(s *Service) { s.stats = stats.OrNoop(c) }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:       st,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		log:         zerolog.Nop(),
		stats:       stats.Noop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FetchGameData loads owned, tracked and custom games concurrently and
// merges them. A failed lookup for a single game yields a placeholder; a
// failed listing fails the whole call.
func (s *Service) FetchGameData(ctx context.Context) (game.Data, error) {
	var owned, tracked, custom []game.Game

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owned, err = s.ownedGames(gctx)
		return err
	})
	g.Go(func() (err error) {
		tracked, err = s.trackedGames(gctx)
		return err
	})
	g.Go(func() error {
		rows, err := s.store.CustomGames(gctx)
		if err != nil {
			return fmt.Errorf("custom games: %w", err)
		}
		custom = make([]game.Game, len(rows))
		for i, c := range rows {
			custom[i] = c.Game()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return game.Data{}, err
	}

	return game.Data{
		Games:        game.Merge(owned, tracked, custom),
		LastExecuted: s.now().UTC(),
	}, nil
}

func (s *Service) ownedGames(ctx context.Context) ([]game.Game, error) {
	if s.steam == nil || s.steamUserID == "" {
		return nil, nil
	}
	list, err := s.steam.OwnedGames(ctx, s.steamUserID)
	if err != nil {
		return nil, err
	}

	out := make([]game.Game, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, og := range list {
		g.Go(func() error {
			count, err := s.steam.PlayerCount(gctx, og.AppID)
			if err != nil {
				s.log.Debug().Err(err).Int("appid", og.AppID).Msg("owned game player count unavailable")
				count = 0
			}
			out[i] = game.FetchedSteam{Base: game.Base{
				ID:      strconv.Itoa(og.AppID),
				Name:    og.Name,
				IconURL: og.IconURL,
				Count:   count,
			}}
			return nil
		})
	}
	_ = g.Wait()
	return out, ctx.Err()
}

func (s *Service) trackedGames(ctx context.Context) ([]game.Game, error) {
	ids, err := s.store.TrackedSteamIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracked games: %w", err)
	}

	out := make([]game.Game, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			out[i] = s.trackedGame(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out, ctx.Err()
}

func (s *Service) trackedGame(ctx context.Context, id string) game.Game {
	appID, err := strconv.Atoi(id)
	if err != nil {
		return s.placeholder(id, ReasonFormat, err)
	}
	if s.steam == nil {
		return s.placeholder(id, ReasonAPIError, errors.New("steam not configured"))
	}

	details, err := s.steam.AppDetails(ctx, appID)
	if err != nil {
		return s.placeholder(id, ReasonAPIError, err)
	}
	count, err := s.steam.PlayerCount(ctx, appID)
	if err != nil {
		return s.placeholder(id, ReasonAPIError, err)
	}
	return game.StoredSteam{Base: game.Base{
		ID:      id,
		Name:    details.Name,
		IconURL: details.CapsuleURL,
		Count:   count,
	}}
}

func (s *Service) placeholder(id, reason string, err error) game.Game {
	s.stats.IncCounter(stats.MetricPlaceholders, 1)
	s.log.Warn().Err(err).Str("id", id).Str("reason", reason).Msg("tracked game lookup failed")
	return game.Placeholder(game.KindStoredSteam, id, reason)
}

func (s *Service) AddTrackedSteamGame(ctx context.Context, id string) error {
	if err := game.ValidateSteamID(id); err != nil {
		return err
	}
	return s.store.AddTrackedSteamID(ctx, normalizeID(id))
}

func (s *Service) AddCustomGame(ctx context.Context, in game.CustomInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.store.AddCustomGame(ctx, in)
	return err
}

func (s *Service) UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) error {
	if id == "" {
		return &game.ValidationError{Fields: map[string]string{"id": "id is required"}}
	}
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.store.UpdateCustomGame(ctx, id, in)
	return err
}

func (s *Service) RemoveGame(ctx context.Context, ref game.Ref) error {
	switch ref.Kind {
	case game.KindStoredSteam:
		return s.store.RemoveTrackedSteamID(ctx, ref.ID)
	case game.KindStoredCustom:
		return s.store.RemoveCustomGame(ctx, ref.ID)
	default:
		return &game.ValidationError{Fields: map[string]string{"type": fmt.Sprintf("%q games cannot be removed", ref.Kind)}}
	}
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return id
	}
	return strconv.FormatInt(n, 10)
}
