package biometric

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/storage"
)

const (
	MsgNotEnabled    = "Biometric login not enabled"
	MsgNoStoredEmail = "No stored email for biometric login"
	msgPromptFailed  = "Biometric authentication failed"

	enabledValue = "true"
)

var defaultPrompt = models.PromptOptions{
	Reason:                "Log in to your candidate account",
	Title:                 "Biometric Login",
	Subtitle:              "Use your biometrics to sign in",
	CancelTitle:           "Use password",
	AllowDeviceCredential: true,
}

// Gate owns biometric enrollment: the enabled flag and the email it unlocks,
// both kept in the secure store.
type Gate struct {
	platform Platform
	store    storage.KeyValueStore
	log      *zap.SugaredLogger
}

func NewGate(platform Platform, secure storage.KeyValueStore, log *zap.SugaredLogger) *Gate {
	return &Gate{platform: platform, store: secure, log: log}
}

func (g *Gate) IsAvailable(ctx context.Context) bool {
	if !g.platform.IsNative() {
		return false
	}
	info, err := g.platform.CheckBiometry(ctx)
	if err != nil {
		g.log.Debugw("biometry check failed", "error", err)
		return false
	}
	return info.IsAvailable
}

func (g *Gate) Types(ctx context.Context) []models.BiometryType {
	if !g.platform.IsNative() {
		return nil
	}
	info, err := g.platform.CheckBiometry(ctx)
	if err != nil {
		return nil
	}
	return info.Types
}

// Enable stores the enrollment for email. It reports false when biometrics
// are unavailable, email is blank or either write fails.
func (g *Gate) Enable(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || !g.IsAvailable(ctx) {
		return false
	}

	if err := g.store.Set(ctx, models.BiometricEnabledKey, enabledValue); err != nil {
		g.log.Errorw("failed to persist biometric flag", "error", err)
		return false
	}
	if err := g.store.Set(ctx, models.BiometricUserEmailKey, email); err != nil {
		g.log.Errorw("failed to persist biometric email", "error", err)
		return false
	}
	return true
}

func (g *Gate) IsEnabled(ctx context.Context) bool {
	if !g.platform.IsNative() {
		return false
	}
	v, err := g.store.Get(ctx, models.BiometricEnabledKey)
	if err != nil {
		return false
	}
	return v == enabledValue
}

func (g *Gate) StoredEmail(ctx context.Context) (string, bool) {
	v, err := g.store.Get(ctx, models.BiometricUserEmailKey)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (g *Gate) Enrollment(ctx context.Context) models.BiometricEnrollment {
	email, _ := g.StoredEmail(ctx)
	return models.BiometricEnrollment{Enabled: g.IsEnabled(ctx), Email: email}
}

// Authenticate runs the platform prompt and resolves the enrolled email.
func (g *Gate) Authenticate(ctx context.Context) models.BiometricResult {
	if !g.IsEnabled(ctx) {
		return models.BiometricResult{Error: MsgNotEnabled}
	}

	if err := g.platform.Authenticate(ctx, defaultPrompt); err != nil {
		msg := err.Error()
		if msg == "" || errors.Is(err, context.Canceled) {
			msg = msgPromptFailed
		}
		return models.BiometricResult{Error: msg}
	}

	email, ok := g.StoredEmail(ctx)
	if !ok {
		return models.BiometricResult{Error: MsgNoStoredEmail}
	}
	return models.BiometricResult{Success: true, Email: email}
}

func (g *Gate) Disable(ctx context.Context) {
	g.Clear(ctx)
}

// Clear drops both enrollment keys. Errors are ignored.
func (g *Gate) Clear(ctx context.Context) {
	if err := g.store.Delete(ctx, models.BiometricEnabledKey); err != nil {
		g.log.Debugw("failed to remove biometric flag", "error", err)
	}
	if err := g.store.Delete(ctx, models.BiometricUserEmailKey); err != nil {
		g.log.Debugw("failed to remove biometric email", "error", err)
	}
}
