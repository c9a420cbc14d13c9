package guard

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/util"
)

type ProfileFetcher interface {
	GetProfile(ctx context.Context) (*models.CandidateProfile, error)
}

// Decision is the outcome of a route check. When Allow is false the caller
// redirects to RedirectPath carrying RedirectTo as the return target.
type Decision struct {
	Allow        bool
	RedirectPath string
	RedirectTo   string
}

func (d Decision) Location() string {
	if d.Allow {
		return ""
	}
	if d.RedirectTo == "" {
		return d.RedirectPath
	}
	return d.RedirectPath + "?" + models.RedirectToParam + "=" + url.QueryEscape(d.RedirectTo)
}

type Guard struct {
	profiles ProfileFetcher
	cache    *ProfileCache
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
}

func NewGuard(profiles ProfileFetcher, cache *ProfileCache, m *metrics.Metrics, log *zap.SugaredLogger) *Guard {
	if cache == nil {
		cache = NewProfileCache()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Guard{profiles: profiles, cache: cache, metrics: m, log: log}
}

// CanActivate decides whether the page at target may be shown.
func (g *Guard) CanActivate(ctx context.Context, target string) Decision {
	return g.check(ctx, target)
}

// CanMatch decides whether a lazily loaded route area may be matched. The
// return target is rebuilt from the URL segments.
func (g *Guard) CanMatch(ctx context.Context, segments []string) Decision {
	return g.check(ctx, "/"+strings.Join(segments, "/"))
}

func (g *Guard) check(ctx context.Context, target string) Decision {
	if _, ok := g.cache.Get(); ok {
		g.metrics.GuardDecision(metrics.DecisionAllow)
		return Decision{Allow: true}
	}

	profile, err := g.profiles.GetProfile(ctx)
	if err != nil {
		if respErr, ok := util.AsResponseError(err); ok {
			switch respErr.Status {
			case http.StatusUnauthorized, http.StatusForbidden:
				g.log.Debugw("guard: not authenticated", "target", target, "status", respErr.Status)
				return g.redirect(models.LoginRoute, target, metrics.DecisionLogin)
			case http.StatusNotFound:
				return g.redirect(models.ProfileSetupRoute, target, metrics.DecisionProfileSetup)
			}
		}
		g.log.Warnw("guard: profile check failed", "target", target, "error", err)
		return g.redirect(models.ProfileSetupRoute, target, metrics.DecisionProfileSetup)
	}

	if profile == nil {
		return g.redirect(models.ProfileSetupRoute, target, metrics.DecisionProfileSetup)
	}

	g.cache.Set(profile)
	g.metrics.GuardDecision(metrics.DecisionAllow)
	return Decision{Allow: true}
}

func (g *Guard) redirect(path, target, decision string) Decision {
	g.metrics.GuardDecision(decision)
	return Decision{RedirectPath: path, RedirectTo: target}
}
