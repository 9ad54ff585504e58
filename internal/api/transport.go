package api

import (
	"net/http"

	"github.com/google/uuid"
)

// TokenSource yields the bearer token for the current session.
// An empty string means the request is sent without credentials.
type TokenSource interface {
	Token() string
}

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// authTransport attaches the session token and a request id to every request.
// The token is read when the request is sent, never cached.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.tokens != nil {
		if tok := t.tokens.Token(); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}
