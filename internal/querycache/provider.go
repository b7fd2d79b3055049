package querycache

import (
	"context"
	"sync"
)

// Provider hands out clients with two lifecycles: a fresh client for every
// server request and a single lazily created client for a client session.
type Provider[T any] struct {
	newClient func() *Client[T]

	once    sync.Once
	session *Client[T]
}

func NewProvider[T any](newClient func() *Client[T]) *Provider[T] {
	return &Provider[T]{newClient: newClient}
}

// ForRequest returns a new client. The caller closes it when the request ends.
func (p *Provider[T]) ForRequest() *Client[T] {
	return p.newClient()
}

// ForSession returns the session client, creating it on first use.
func (p *Provider[T]) ForSession() *Client[T] {
	p.once.Do(func() { p.session = p.newClient() })
	return p.session
}

// Close tears down the session client if one was created.
func (p *Provider[T]) Close() {
	p.once.Do(func() {})
	if p.session != nil {
		p.session.Close()
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext[T any](ctx context.Context, c *Client[T]) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the client stored by NewContext.
func FromContext[T any](ctx context.Context) (*Client[T], bool) {
	c, ok := ctx.Value(ctxKey{}).(*Client[T])
	return c, ok
}
