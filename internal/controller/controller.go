package controller

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
)

type SessionManager interface {
	SendSignupCode(ctx context.Context, email, password, phoneNumber string) error
	VerifyCode(ctx context.Context, email, code string) (*models.TokenPairResponse, error)
	Login(ctx context.Context, email, password string) (string, error)
	LoginWithBiometric(ctx context.Context) models.BiometricLoginResult
	RefreshAccessToken(ctx context.Context) bool
	Logout(ctx context.Context)
	IsLoggedIn(ctx context.Context) bool
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type BiometricControl interface {
	IsAvailable(ctx context.Context) bool
	Types(ctx context.Context) []models.BiometryType
	Enrollment(ctx context.Context) models.BiometricEnrollment
	Enable(ctx context.Context, email string) bool
	Disable(ctx context.Context)
}

type LifecyclePublisher interface {
	Publish(state models.AppState)
}

type ProfileReader interface {
	Get() (*models.CandidateProfile, bool)
}

type Deps struct {
	Session    SessionManager
	Biometric  BiometricControl
	Lifecycle  LifecyclePublisher
	Navigation *Navigation
	Profiles   ProfileReader
}

type Controller struct {
	zapLogger  *zap.SugaredLogger
	session    SessionManager
	biometric  BiometricControl
	lifecycle  LifecyclePublisher
	navigation *Navigation
	profiles   ProfileReader
}

func NewController(logger *zap.SugaredLogger, deps Deps) *Controller {
	if deps.Navigation == nil {
		deps.Navigation = NewNavigation()
	}
	return &Controller{
		zapLogger:  logger,
		session:    deps.Session,
		biometric:  deps.Biometric,
		lifecycle:  deps.Lifecycle,
		navigation: deps.Navigation,
		profiles:   deps.Profiles,
	}
}

// RegisterHandlers mounts the shell API on g. Paths are relative to /api.
func RegisterHandlers(g *echo.Group, c *Controller) {
	g.GET("/ping", c.CheckServer)

	g.GET("/session", c.GetSession)
	g.POST("/session/signup-code", c.SendSignupCode)
	g.POST("/session/verify", c.VerifyCode)
	g.POST("/session/login", c.Login)
	g.POST("/session/biometric-login", c.LoginWithBiometric)
	g.POST("/session/refresh", c.RefreshSession)
	g.POST("/session/logout", c.Logout)

	g.POST("/password/request", c.RequestPasswordReset)
	g.POST("/password/verify", c.VerifyResetCode)
	g.POST("/password/reset", c.ResetPassword)

	g.GET("/biometric", c.GetBiometric)
	g.POST("/biometric/enable", c.EnableBiometric)
	g.POST("/biometric/disable", c.DisableBiometric)

	g.POST("/lifecycle/:state", c.PublishLifecycle)
	g.GET("/navigation", c.GetNavigation)
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (GET /api/session).
func (c *Controller) GetSession(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	return ctx.JSON(http.StatusOK, models.SessionStatus{
		LoggedIn:  c.session.IsLoggedIn(reqCtx),
		Biometric: c.biometric.Enrollment(reqCtx),
	})
}

// (POST /api/session/signup-code).
func (c *Controller) SendSignupCode(ctx echo.Context) error {
	var req models.ShellSignupRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.session.SendSignupCode(ctx.Request().Context(), req.Email, req.Password, req.PhoneNumber); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/session/verify).
func (c *Controller) VerifyCode(ctx echo.Context) error {
	var req models.ShellVerifyRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := c.session.VerifyCode(ctx.Request().Context(), req.Email, req.OneTimeCode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.TokenResponse{Token: resp.Token})
}

// (POST /api/session/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.ShellLoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := c.session.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

// (POST /api/session/biometric-login).
func (c *Controller) LoginWithBiometric(ctx echo.Context) error {
	res := c.session.LoginWithBiometric(ctx.Request().Context())
	if !res.Success {
		return ctx.JSON(http.StatusUnauthorized, res)
	}
	return ctx.JSON(http.StatusOK, res)
}

// (POST /api/session/refresh).
func (c *Controller) RefreshSession(ctx echo.Context) error {
	ok := c.session.RefreshAccessToken(ctx.Request().Context())
	if !ok {
		c.navigation.Navigate(models.LoginRoute)
	}
	return ctx.JSON(http.StatusOK, models.RefreshResult{Refreshed: ok})
}

// (POST /api/session/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	c.session.Logout(ctx.Request().Context())
	c.navigation.Navigate(models.RootRoute)
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/password/request).
func (c *Controller) RequestPasswordReset(ctx echo.Context) error {
	var req models.PasswordResetRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.session.RequestPasswordReset(ctx.Request().Context(), req.Email); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/password/verify).
func (c *Controller) VerifyResetCode(ctx echo.Context) error {
	var req models.PasswordResetVerifyRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.session.VerifyResetCode(ctx.Request().Context(), req.Email, req.OneTimeCode); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/password/reset).
func (c *Controller) ResetPassword(ctx echo.Context) error {
	var req models.PasswordResetCompleteRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.session.ResetPassword(ctx.Request().Context(), req.Email, req.OneTimeCode, req.NewPassword); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (GET /api/biometric).
func (c *Controller) GetBiometric(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	enrollment := c.biometric.Enrollment(reqCtx)

	return ctx.JSON(http.StatusOK, models.BiometricStatus{
		Available: c.biometric.IsAvailable(reqCtx),
		Types:     c.biometric.Types(reqCtx),
		Enabled:   enrollment.Enabled,
		Email:     enrollment.Email,
	})
}

// (POST /api/biometric/enable).
func (c *Controller) EnableBiometric(ctx echo.Context) error {
	var req models.BiometricEnableRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if !c.biometric.Enable(ctx.Request().Context(), req.Email) {
		return echo.NewHTTPError(http.StatusConflict, "biometric login could not be enabled")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/biometric/disable).
func (c *Controller) DisableBiometric(ctx echo.Context) error {
	c.biometric.Disable(ctx.Request().Context())
	return ctx.NoContent(http.StatusNoContent)
}

// (POST /api/lifecycle/{state}).
func (c *Controller) PublishLifecycle(ctx echo.Context) error {
	state := models.AppState(ctx.Param("state"))
	if state != models.AppStateForeground && state != models.AppStateBackground {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown app state")
	}

	c.lifecycle.Publish(state)
	return ctx.NoContent(http.StatusNoContent)
}

// (GET /api/navigation).
func (c *Controller) GetNavigation(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.NavigationState{Location: c.navigation.Location()})
}

// Page renders a protected page; the route guard has already run.
func (c *Controller) Page(ctx echo.Context) error {
	view := models.PageView{Path: ctx.Request().URL.Path}
	if c.profiles != nil {
		view.Profile, _ = c.profiles.Get()
	}
	return ctx.JSON(http.StatusOK, view)
}
