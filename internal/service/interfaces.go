package service

import (
	"context"

	"github.com/rryowa/candidate_session/internal/models"
)

// AuthAPI is the slice of the remote API the session manager drives.
type AuthAPI interface {
	SendSignupCode(ctx context.Context, req models.SignupCodeRequest) error
	VerifyCandidate(ctx context.Context, req models.VerifyCodeRequest) (*models.TokenPairResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPairResponse, error)
	BiometricLogin(ctx context.Context, req models.BiometricLoginRequest) (*models.TokenPairResponse, error)
	Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPairResponse, error)
	RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) error
	VerifyResetCode(ctx context.Context, req models.PasswordResetVerifyRequest) error
	ResetPassword(ctx context.Context, req models.PasswordResetCompleteRequest) error
}

type DeviceProvider interface {
	Metadata(ctx context.Context) (models.DeviceMetadata, error)
}

type BiometricGate interface {
	IsAvailable(ctx context.Context) bool
	IsEnabled(ctx context.Context) bool
	StoredEmail(ctx context.Context) (string, bool)
	Enable(ctx context.Context, email string) bool
	Authenticate(ctx context.Context) models.BiometricResult
	Clear(ctx context.Context)
}

type EventNotifier interface {
	NotifySessionEvent(ctx context.Context, event models.SessionEvent)
}
