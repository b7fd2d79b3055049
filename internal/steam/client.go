// Package steam is a small Steam Web API client covering owned games,
// store app details and current player counts.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/gamepicker/internal/stats"
)

const (
	DefaultAPIURL   = "https://api.steampowered.com"
	DefaultStoreURL = "https://store.steampowered.com"
	iconURLFormat   = "https://media.steampowered.com/steamcommunity/public/images/apps/%d/%s.jpg"
)

var (
	// ErrAppNotFound is returned when the store has no details for an app id.
	ErrAppNotFound = errors.New("steam app not found")
	// ErrNoPlayerCount is returned when Steam reports no player count.
	ErrNoPlayerCount = errors.New("steam player count unavailable")
)

// OwnedGame is one entry of a user's library.
type OwnedGame struct {
	AppID   int
	Name    string
	IconURL string
}

// AppDetails is the subset of store metadata the game list shows.
type AppDetails struct {
	Name       string
	CapsuleURL string
}

type Client struct {
	http     *http.Client
	apiURL   *url.URL
	storeURL *url.URL
	key      string

	details *lru.Cache[int, AppDetails] // optional; nil means no memo
	log     zerolog.Logger
	stats   stats.Collector
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithAPIURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil && raw != "" {
			c.apiURL = u
		}
	}
}

func WithStoreURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil && raw != "" {
			c.storeURL = u
		}
	}
}

// WithDetailsCache memoizes up to size app details lookups. Player counts
// are never cached.
func WithDetailsCache(size int) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		if cache, err := lru.New[int, AppDetails](size); err == nil {
			c.details = cache
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithStats(s stats.Collector) Option {
	return func(c *Client) { c.stats = stats.OrNoop(s) }
}

func New(key string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, errors.New("steam api key required")
	}
	api, _ := url.Parse(DefaultAPIURL)
	store, _ := url.Parse(DefaultStoreURL)
	c := &Client{
		http:     http.DefaultClient,
		apiURL:   api,
		storeURL: store,
		key:      key,
		log:      zerolog.Nop(),
		stats:    stats.Noop{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// noStore keeps a response out of any HTTP cache in front of the client.
func noStore(req *http.Request) {
	req.Header.Set("Cache-Control", "no-cache, no-store")
}

func (c *Client) getJSON(ctx context.Context, base *url.URL, p string, q url.Values, out any, edits ...func(*http.Request)) error {
	u := *base
	u.Path = path.Join(u.Path, p)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for _, edit := range edits {
		edit(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %s: %s", p, resp.Status, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	// Reaching EOF lets the caching transport store the response.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// OwnedGames lists the library of steamID with app info.
func (c *Client) OwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	var body struct {
		Response struct {
			Games []struct {
				AppID      int    `json:"appid"`
				Name       string `json:"name"`
				ImgIconURL string `json:"img_icon_url"`
			} `json:"games"`
		} `json:"response"`
	}
	q := url.Values{
		"key":                       {c.key},
		"steamid":                   {steamID},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
		"format":                    {"json"},
	}
	if err := c.getJSON(ctx, c.apiURL, "/IPlayerService/GetOwnedGames/v1/", q, &body); err != nil {
		return nil, fmt.Errorf("owned games: %w", err)
	}

	games := make([]OwnedGame, 0, len(body.Response.Games))
	for _, g := range body.Response.Games {
		og := OwnedGame{AppID: g.AppID, Name: g.Name}
		if og.Name == "" {
			og.Name = "unknown"
		}
		if g.ImgIconURL != "" {
			og.IconURL = fmt.Sprintf(iconURLFormat, g.AppID, g.ImgIconURL)
		}
		games = append(games, og)
	}
	return games, nil
}

// PlayerCount returns the number of players currently in appID. The count
// is always read from Steam, never from a cache.
func (c *Client) PlayerCount(ctx context.Context, appID int) (int, error) {
	var body struct {
		Response struct {
			PlayerCount int `json:"player_count"`
			Result      int `json:"result"`
		} `json:"response"`
	}
	q := url.Values{"appid": {strconv.Itoa(appID)}, "format": {"json"}}
	if err := c.getJSON(ctx, c.apiURL, "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/", q, &body, noStore); err != nil {
		return 0, fmt.Errorf("player count %d: %w", appID, err)
	}
	if body.Response.Result != 1 {
		return 0, fmt.Errorf("player count %d: %w", appID, ErrNoPlayerCount)
	}
	return body.Response.PlayerCount, nil
}

// AppDetails returns store metadata for appID.
func (c *Client) AppDetails(ctx context.Context, appID int) (AppDetails, error) {
	if c.details != nil {
		if d, ok := c.details.Get(appID); ok {
			c.stats.IncCounter(stats.MetricDetailsHits, 1)
			return d, nil
		}
		c.stats.IncCounter(stats.MetricDetailsMisses, 1)
	}

	var body map[string]struct {
		Success bool `json:"success"`
		Data    struct {
			Name           string `json:"name"`
			HeaderImage    string `json:"header_image"`
			CapsuleImageV5 string `json:"capsule_imagev5"`
		} `json:"data"`
	}
	id := strconv.Itoa(appID)
	if err := c.getJSON(ctx, c.storeURL, "/api/appdetails", url.Values{"appids": {id}}, &body); err != nil {
		return AppDetails{}, fmt.Errorf("app details %d: %w", appID, err)
	}
	entry, ok := body[id]
	if !ok || !entry.Success {
		return AppDetails{}, fmt.Errorf("app details %d: %w", appID, ErrAppNotFound)
	}

	d := AppDetails{Name: entry.Data.Name, CapsuleURL: entry.Data.CapsuleImageV5}
	if d.CapsuleURL == "" {
		d.CapsuleURL = entry.Data.HeaderImage
	}
	if c.details != nil {
		c.details.Add(appID, d)
	}
	return d, nil
}
