package client

import (
	"context"
	"net/http"
	"strings"
)

const authPathSegment = "/api/auth/"

type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// BearerTransport attaches the stored access token to every request outside
// the /api/auth/ tree.
type BearerTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if strings.Contains(req.URL.Path, authPathSegment) || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}

	token, ok := t.Tokens.AccessToken(req.Context())
	if !ok {
		return base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(authed)
}
