package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/guard"
)

const ShellKeyHeader = "X-Shell-Key"

type RouteGuard interface {
	CanActivate(ctx context.Context, target string) guard.Decision
	CanMatch(ctx context.Context, segments []string) guard.Decision
}

type Navigator interface {
	Navigate(path string)
}

// ShellKeyMiddleware rejects requests that do not carry the configured key in
// X-Shell-Key. An empty key disables the check.
func ShellKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}

			got := c.Request().Header.Get(ShellKeyHeader)
			if got == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "shell key is missing")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid shell key")
			}
			return next(c)
		}
	}
}

// CanActivateMiddleware guards a page by its full request URI.
func CanActivateMiddleware(g RouteGuard, nav Navigator, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			target := c.Request().URL.RequestURI()
			d := g.CanActivate(c.Request().Context(), target)
			return applyDecision(c, next, d, target, nav, log)
		}
	}
}

// CanMatchMiddleware guards a lazily loaded area by its path segments.
func CanMatchMiddleware(g RouteGuard, nav Navigator, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			segments := strings.Split(strings.Trim(path, "/"), "/")
			d := g.CanMatch(c.Request().Context(), segments)
			return applyDecision(c, next, d, path, nav, log)
		}
	}
}

func applyDecision(c echo.Context, next echo.HandlerFunc, d guard.Decision, target string, nav Navigator, log *zap.SugaredLogger) error {
	if d.Allow {
		nav.Navigate(target)
		return next(c)
	}

	location := d.Location()
	log.Debugw("route guarded", "target", target, "redirect", d.RedirectPath)
	nav.Navigate(location)
	return c.Redirect(http.StatusFound, location)
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
				a.log.Errorw("Request", fields...)
			} else {
				a.log.Debugw("Request", fields...)
			}
			return nil
		},
	}
}
