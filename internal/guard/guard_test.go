package guard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/util"
)

type stubFetcher struct {
	profile *models.CandidateProfile
	err     error
	calls   int
}

func (f *stubFetcher) GetProfile(context.Context) (*models.CandidateProfile, error) {
	f.calls++
	return f.profile, f.err
}

func TestGuard_CanActivate(t *testing.T) {
	profile := &models.CandidateProfile{ID: "c-1", FirstName: "Ada"}

	tests := []struct {
		name     string
		profile  *models.CandidateProfile
		err      error
		allow    bool
		location string
	}{
		{
			name:    "profile present",
			profile: profile,
			allow:   true,
		},
		{
			name:     "profile not set up",
			location: "/profile-setup?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
		{
			name:     "profile missing",
			err:      util.NewResponseError(http.StatusNotFound, "Not Found"),
			location: "/profile-setup?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
		{
			name:     "unauthorized",
			err:      util.NewResponseError(http.StatusUnauthorized, "Unauthorized"),
			location: "/login?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
		{
			name:     "forbidden",
			err:      util.NewResponseError(http.StatusForbidden, "Forbidden"),
			location: "/login?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
		{
			name:     "server error",
			err:      util.NewResponseError(http.StatusInternalServerError, "boom"),
			location: "/profile-setup?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
		{
			name:     "network error",
			err:      errors.New("dial tcp: connection refused"),
			location: "/profile-setup?redirectTo=%2Fapp%2Fjobs%3Fpage%3D2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewProfileCache()
			g := NewGuard(&stubFetcher{profile: tt.profile, err: tt.err}, cache, nil, nil)

			d := g.CanActivate(context.Background(), "/app/jobs?page=2")

			assert.Equal(t, tt.allow, d.Allow)
			assert.Equal(t, tt.location, d.Location())

			cached, ok := cache.Get()
			assert.Equal(t, tt.allow, ok)
			if tt.allow {
				assert.Equal(t, tt.profile, cached)
			}
		})
	}
}

func TestGuard_CanMatchBuildsTargetFromSegments(t *testing.T) {
	g := NewGuard(&stubFetcher{err: util.NewResponseError(http.StatusUnauthorized, "Unauthorized")}, nil, nil, nil)

	d := g.CanMatch(context.Background(), []string{"app", "jobs", "42"})

	require.False(t, d.Allow)
	assert.Equal(t, models.LoginRoute, d.RedirectPath)
	assert.Equal(t, "/app/jobs/42", d.RedirectTo)
	assert.Equal(t, "/login?redirectTo=%2Fapp%2Fjobs%2F42", d.Location())
}

func TestGuard_RecordsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	fetcher := &stubFetcher{profile: &models.CandidateProfile{ID: "c-1"}}
	cache := NewProfileCache()
	g := NewGuard(fetcher, cache, m, nil)

	g.CanActivate(context.Background(), "/app")
	cache.Clear()
	fetcher.profile = nil
	g.CanActivate(context.Background(), "/app")

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "candidate_session_guard_decisions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			got[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		metrics.DecisionAllow:        1,
		metrics.DecisionProfileSetup: 1,
	}, got)
}

func TestGuard_CachedProfileSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{profile: &models.CandidateProfile{ID: "c-1"}}
	cache := NewProfileCache()
	g := NewGuard(fetcher, cache, nil, nil)

	first := g.CanActivate(context.Background(), "/app")
	require.True(t, first.Allow)

	fetcher.profile = nil
	fetcher.err = util.NewResponseError(http.StatusServiceUnavailable, "unavailable")

	second := g.CanActivate(context.Background(), "/app")
	assert.True(t, second.Allow)
	third := g.CanMatch(context.Background(), []string{"app", "jobs"})
	assert.True(t, third.Allow)
	assert.Equal(t, 1, fetcher.calls)

	cache.Clear()
	after := g.CanActivate(context.Background(), "/app")
	assert.False(t, after.Allow)
	assert.Equal(t, "/profile-setup?redirectTo=%2Fapp", after.Location())
	assert.Equal(t, 2, fetcher.calls)
}

func TestProfileCache_Clear(t *testing.T) {
	cache := NewProfileCache()
	cache.Set(&models.CandidateProfile{ID: "c-1"})

	cache.Clear()

	p, ok := cache.Get()
	assert.False(t, ok)
	assert.Nil(t, p)
}
