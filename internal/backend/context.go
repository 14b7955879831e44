package backend

import (
	"context"
	"net/http"
)

type clientKey struct{}

// WithClient stores a request-scoped client so later handlers reuse the
// session it already resolved.
func WithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the client stored by WithClient, if any.
func ClientFromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(clientKey{}).(*Client)
	return c, ok && c != nil
}

// RequestClients builds request-scoped clients.
type RequestClients interface {
	ForRequest(w http.ResponseWriter, r *http.Request) *Client
}

// ClientFor returns the client already attached to r, or a fresh one.
func ClientFor(f RequestClients, w http.ResponseWriter, r *http.Request) *Client {
	if c, ok := ClientFromContext(r.Context()); ok {
		return c
	}
	return f.ForRequest(w, r)
}
