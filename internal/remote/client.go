// Package remote talks to a gamepicker server's JSON API. Client implements
// catalog.Reader and catalog.Writer so the CLI can run the same query cache
// and mutation pipeline as the server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/store"
)

// ErrUpstream wraps every non-validation failure reported by the server.
var ErrUpstream = errors.New("gamepicker server error")

// ErrorBody is the JSON error document the server writes.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type Client struct {
	http    *http.Client
	baseURL *url.URL
}

var _ catalog.ReadWriter = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	c := &Client{http: &http.Client{Timeout: 30 * time.Second}, baseURL: u}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) doJSON(ctx context.Context, method, p string, in, out any) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(method, p, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(method, p string, resp *http.Response) error {
	var eb ErrorBody
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, &eb); err != nil || eb.Error == "" {
		eb.Error = string(b)
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest && len(eb.Fields) > 0:
		return &game.ValidationError{Fields: eb.Fields}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s: %w", ErrUpstream, method, p, store.ErrNotFound)
	default:
		return fmt.Errorf("%w: %s %s: %s: %s", ErrUpstream, method, p, resp.Status, eb.Error)
	}
}

func (c *Client) FetchGameData(ctx context.Context) (game.Data, error) {
	var d game.Data
	err := c.doJSON(ctx, http.MethodGet, "/api/games", nil, &d)
	return d, err
}

// Snapshot fetches the server's dehydrated cache.
func (c *Client) Snapshot(ctx context.Context) (gamequery.Snapshot, error) {
	var s gamequery.Snapshot
	err := c.doJSON(ctx, http.MethodGet, "/api/games/snapshot", nil, &s)
	return s, err
}

type steamBody struct {
	ID string `json:"id"`
}

func (c *Client) AddTrackedSteamGame(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/games/steam", steamBody{ID: id}, nil)
}

func (c *Client) AddCustomGame(ctx context.Context, in game.CustomInput) error {
	return c.doJSON(ctx, http.MethodPost, "/api/games/custom", in, nil)
}

func (c *Client) UpdateCustomGame(ctx context.Context, id string, in game.CustomInput) error {
	return c.doJSON(ctx, http.MethodPut, "/api/games/custom/"+id, in, nil)
}

func (c *Client) RemoveGame(ctx context.Context, ref game.Ref) error {
	p := fmt.Sprintf("/api/games/%s/%s", ref.Kind, ref.ID)
	return c.doJSON(ctx, http.MethodDelete, p, nil, nil)
}
