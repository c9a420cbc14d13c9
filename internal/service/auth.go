package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/clock"
	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/util"
)

const (
	// RefreshMargin is how long before exp the access token is renewed.
	RefreshMargin = 60 * time.Second

	defaultRequestTimeout = 15 * time.Second

	msgBiometricLoginFailed = "Biometric login failed"
	msgSessionSetupFailed   = "Could not start session"
)

type AuthDeps struct {
	API            AuthAPI
	Tokens         *TokenStore
	Device         DeviceProvider
	Biometric      BiometricGate
	Notifier       EventNotifier
	Metrics        *metrics.Metrics
	Clock          clock.Clock
	Log            *zap.SugaredLogger
	RequestTimeout time.Duration
}

// AuthService is the session manager: it signs the candidate in, keeps the
// access token fresh with a single self-rescheduling timer and tears the
// session down on logout or revocation.
type AuthService struct {
	api            AuthAPI
	tokens         *TokenStore
	device         DeviceProvider
	biometric      BiometricGate
	notifier       EventNotifier
	metrics        *metrics.Metrics
	clock          clock.Clock
	log            *zap.SugaredLogger
	requestTimeout time.Duration

	mu           sync.Mutex
	refreshTimer clock.Timer
	// timerGen invalidates callbacks of superseded timers that already fired.
	timerGen    uint64
	logoutHooks []func()
}

func NewAuthService(deps AuthDeps) *AuthService {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}

	return &AuthService{
		api:            deps.API,
		tokens:         deps.Tokens,
		device:         deps.Device,
		biometric:      deps.Biometric,
		notifier:       deps.Notifier,
		metrics:        deps.Metrics,
		clock:          deps.Clock,
		log:            deps.Log,
		requestTimeout: deps.RequestTimeout,
	}
}

// OnLogout registers fn to run after every logout, forced or not.
func (s *AuthService) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutHooks = append(s.logoutHooks, fn)
}

func (s *AuthService) SendSignupCode(ctx context.Context, email, password, phoneNumber string) error {
	return s.api.SendSignupCode(ctx, models.SignupCodeRequest{
		Email:       email,
		Password:    password,
		PhoneNumber: phoneNumber,
	})
}

// Login returns the new access token. Biometric enrollment is reconciled
// afterwards on a best-effort basis.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	meta, err := s.device.Metadata(ctx)
	if err != nil {
		return "", fmt.Errorf("device metadata: %w", err)
	}

	resp, err := s.api.Login(ctx, models.LoginRequest{
		Email:          email,
		Password:       password,
		DeviceMetadata: meta,
	})
	if err != nil {
		s.metrics.Login(metrics.MethodPassword, false)
		return "", err
	}

	if err := s.establish(ctx, resp); err != nil {
		s.metrics.Login(metrics.MethodPassword, false)
		return "", err
	}
	s.metrics.Login(metrics.MethodPassword, true)

	s.reconcileBiometric(ctx, email)
	return resp.Token, nil
}

func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*models.TokenPairResponse, error) {
	meta, err := s.device.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("device metadata: %w", err)
	}

	resp, err := s.api.VerifyCandidate(ctx, models.VerifyCodeRequest{
		Email:          email,
		OneTimeCode:    code,
		DeviceMetadata: meta,
	})
	if err != nil {
		s.metrics.Login(metrics.MethodOTP, false)
		return nil, err
	}

	if err := s.establish(ctx, resp); err != nil {
		s.metrics.Login(metrics.MethodOTP, false)
		return nil, err
	}
	s.metrics.Login(metrics.MethodOTP, true)
	return resp, nil
}

func (s *AuthService) LoginWithBiometric(ctx context.Context) models.BiometricLoginResult {
	res := s.biometric.Authenticate(ctx)
	if !res.Success {
		s.metrics.Login(metrics.MethodBiometric, false)
		return models.BiometricLoginResult{Error: res.Error}
	}

	result := s.biometricLogin(ctx, res.Email)
	s.metrics.Login(metrics.MethodBiometric, result.Success)
	return result
}

func (s *AuthService) biometricLogin(ctx context.Context, email string) models.BiometricLoginResult {
	meta, err := s.device.Metadata(ctx)
	if err != nil {
		s.log.Warnw("biometric login without device metadata", "error", err)
		return models.BiometricLoginResult{Error: msgBiometricLoginFailed}
	}

	resp, err := s.api.BiometricLogin(ctx, models.BiometricLoginRequest{
		Email:          email,
		DeviceMetadata: meta,
	})
	if err != nil {
		respErr, ok := util.AsResponseError(err)
		switch {
		case ok && respErr.Code == models.ReauthRequiredCode:
			return models.BiometricLoginResult{Error: models.ReauthRequiredCode}
		case ok:
			return models.BiometricLoginResult{Error: respErr.Msg}
		default:
			s.log.Warnw("biometric login failed", "error", err)
			return models.BiometricLoginResult{Error: msgBiometricLoginFailed}
		}
	}

	if err := s.establish(ctx, resp); err != nil {
		return models.BiometricLoginResult{Error: msgSessionSetupFailed}
	}
	return models.BiometricLoginResult{Success: true, Token: resp.Token}
}

// RefreshAccessToken exchanges the stored refresh token for a new pair. Any
// failure ends the session; a revoked or expired refresh token also drops
// biometric enrollment.
func (s *AuthService) RefreshAccessToken(ctx context.Context) bool {
	refreshToken, ok := s.tokens.RefreshToken(ctx)
	if !ok {
		s.log.Debug("no refresh token, logging out")
		s.metrics.Refresh(metrics.ResultFailure)
		s.Logout(ctx)
		return false
	}

	meta, err := s.device.Metadata(ctx)
	if err != nil {
		s.log.Warnw("refresh without device metadata", "error", err)
		s.metrics.Refresh(metrics.ResultFailure)
		s.Logout(ctx)
		return false
	}

	resp, err := s.api.Refresh(ctx, models.RefreshRequest{
		RefreshToken:   refreshToken,
		DeviceMetadata: meta,
	})
	if err != nil {
		if isRevocation(err) {
			s.log.Infow("refresh token revoked, clearing biometric enrollment", "reason", err.Error())
			s.biometric.Clear(ctx)
			s.metrics.Refresh(metrics.ResultRevoked)
			s.notify(ctx, models.SessionEvent{
				Type:     models.SessionEventRevoked,
				DeviceID: meta.DeviceID,
				Reason:   err.Error(),
				At:       s.clock.Now(),
			})
		} else {
			s.log.Warnw("token refresh failed", "error", err)
			s.metrics.Refresh(metrics.ResultFailure)
		}
		s.Logout(ctx)
		return false
	}

	if err := s.tokens.SaveCredentials(ctx, models.Credentials{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}); err != nil {
		s.log.Errorw("failed to persist refreshed tokens", "error", err)
		s.metrics.Refresh(metrics.ResultFailure)
		s.Logout(ctx)
		return false
	}

	s.metrics.Refresh(metrics.ResultSuccess)
	s.StartTokenRefreshWatcher(ctx)
	return true
}

// StartTokenRefreshWatcher schedules one refresh RefreshMargin before the
// access token expires, replacing any pending one. Nothing is scheduled for
// a missing or malformed token or one expiring within the margin.
func (s *AuthService) StartTokenRefreshWatcher(ctx context.Context) {
	s.StopTokenRefreshWatcher()

	token, ok := s.tokens.AccessToken(ctx)
	if !ok {
		return
	}

	expiresAt, err := tokenExpiry(token)
	if err != nil {
		s.log.Debugw("cannot schedule refresh", "error", err)
		return
	}

	wait := expiresAt.Sub(s.clock.Now()) - RefreshMargin
	if wait <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.refreshTimer = s.clock.AfterFunc(wait, func() { s.onRefreshTimer(gen) })

	s.log.Debugw("token refresh scheduled", "in", wait)
}

func (s *AuthService) StopTokenRefreshWatcher() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
	s.timerGen++
}

func (s *AuthService) onRefreshTimer(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.refreshTimer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()
	s.RefreshAccessToken(ctx)
}

// Logout is local only: tokens are removed and the refresh timer stopped.
func (s *AuthService) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.tokens.ClearCredentials(ctx)
	s.StopTokenRefreshWatcher()

	s.mu.Lock()
	hooks := append([]func(){}, s.logoutHooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// IsLoggedIn only checks that an access token is stored, not that it is
// still valid.
func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.tokens.AccessToken(ctx)
	return ok
}

func (s *AuthService) AccessToken(ctx context.Context) (string, bool) {
	return s.tokens.AccessToken(ctx)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.api.RequestPasswordReset(ctx, models.PasswordResetRequest{Email: email})
}

func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	return s.api.VerifyResetCode(ctx, models.PasswordResetVerifyRequest{Email: email, OneTimeCode: code})
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.api.ResetPassword(ctx, models.PasswordResetCompleteRequest{
		Email:       email,
		OneTimeCode: code,
		NewPassword: newPassword,
	})
}

func (s *AuthService) establish(ctx context.Context, resp *models.TokenPairResponse) error {
	creds := models.Credentials{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}
	if err := s.tokens.SaveCredentials(ctx, creds); err != nil {
		return err
	}
	s.StartTokenRefreshWatcher(ctx)
	return nil
}

func (s *AuthService) reconcileBiometric(ctx context.Context, email string) {
	if !s.biometric.IsAvailable(ctx) {
		return
	}

	stored, _ := s.biometric.StoredEmail(ctx)
	if s.biometric.IsEnabled(ctx) && stored == email {
		return
	}

	if !s.biometric.Enable(ctx, email) {
		s.log.Warnw("biometric enrollment not updated after login")
	}
}

func (s *AuthService) notify(ctx context.Context, event models.SessionEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifySessionEvent(ctx, event)
}

// isRevocation only trusts server responses; transport failures never revoke.
func isRevocation(err error) bool {
	respErr, ok := util.AsResponseError(err)
	if !ok {
		return false
	}
	if respErr.Status == http.StatusUnauthorized {
		return true
	}
	msg := strings.ToLower(respErr.Msg)
	return strings.Contains(msg, "revoked") || strings.Contains(msg, "expired")
}
