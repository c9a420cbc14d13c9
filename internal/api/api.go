package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	middleware "github.com/oapi-codegen/echo-middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/controller"
	"github.com/rryowa/candidate_session/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	guard           RouteGuard
	navigator       Navigator
	gatherer        prometheus.Gatherer
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	shellKey        string
}

type Deps struct {
	Controller *controller.Controller
	Guard      RouteGuard
	Navigator  Navigator
	Gatherer   prometheus.Gatherer
}

func NewAPI(deps Deps, l *zap.SugaredLogger, sc *util.ServerConfig) *API {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	return &API{
		server:          e,
		controller:      deps.Controller,
		guard:           deps.Guard,
		navigator:       deps.Navigator,
		gatherer:        deps.Gatherer,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		shellKey:        sc.ShellAPIKey,
	}
}

// RegisterRoutes wires middleware, the validated /api group, the guarded
// /app pages and the operational endpoints.
func (a *API) RegisterRoutes() error {
	swagger, err := controller.GetSwagger()
	if err != nil {
		return fmt.Errorf("load OpenAPI document: %w", err)
	}
	swagger.Servers = nil

	a.server.Use(echomiddleware.Recover())
	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	a.server.GET("/ping", a.controller.CheckServer)
	a.server.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))

	g := a.server.Group("/api", ShellKeyMiddleware(a.shellKey))
	g.Use(middleware.OapiRequestValidator(swagger))
	controller.RegisterHandlers(g, a.controller)

	app := a.server.Group("/app", ShellKeyMiddleware(a.shellKey))
	jobs := CanMatchMiddleware(a.guard, a.navigator, a.log)
	app.GET("/jobs", a.controller.Page, jobs)
	app.GET("/jobs/*", a.controller.Page, jobs)

	pages := CanActivateMiddleware(a.guard, a.navigator, a.log)
	app.GET("", a.controller.Page, pages)
	app.GET("/*", a.controller.Page, pages)

	return nil
}

func (a *API) Run(ctxBackground context.Context) error {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.RegisterRoutes(); err != nil {
		return err
	}

	return a.ListenGracefulShutdown(ctx)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	a.log.Infof("Shell listening on: %s", a.server.Server.Addr)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("shell server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("Shutting down shell server...")

	timeout := a.gracefulTimeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("shutdown: %v", err)
		return err
	}
	a.log.Info("shell server shutdown completed")
	return nil
}
