package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AccessToken(context.Context) (string, bool) {
	return s.token, s.token != ""
}

func TestBearerTransport(t *testing.T) {
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = r.Header.Get("Authorization")
	}))
	t.Cleanup(srv.Close)

	httpClient := &http.Client{Transport: &BearerTransport{Tokens: staticTokens{token: "jwt"}}}

	for _, path := range []string{"/api/candidateprofile/me", "/api/auth/login", "/api/jobs"} {
		resp, err := httpClient.Get(srv.URL + path)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	}

	assert.Equal(t, "Bearer jwt", seen["/api/candidateprofile/me"])
	assert.Equal(t, "Bearer jwt", seen["/api/jobs"])
	assert.Empty(t, seen["/api/auth/login"])
}

func TestBearerTransportWithoutToken(t *testing.T) {
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
	}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/candidateprofile/me", nil)
	require.NoError(t, err)

	resp, err := (&BearerTransport{Tokens: staticTokens{}}).RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Empty(t, header)
	assert.Empty(t, req.Header.Get("Authorization"))
}
