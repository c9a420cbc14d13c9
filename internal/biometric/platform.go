package biometric

import (
	"context"
	"errors"

	"github.com/rryowa/candidate_session/internal/models"
)

var ErrUnsupported = errors.New("biometrics not supported on this platform")

// Platform is the native biometric plugin boundary.
type Platform interface {
	// IsNative reports whether the host can reach biometric hardware at all.
	IsNative() bool
	CheckBiometry(ctx context.Context) (models.BiometryInfo, error)
	// Authenticate shows the prompt and returns nil only on a verified match.
	Authenticate(ctx context.Context, opts models.PromptOptions) error
}

// Unsupported is used on hosts without biometric hardware.
type Unsupported struct{}

func (Unsupported) IsNative() bool { return false }

func (Unsupported) CheckBiometry(context.Context) (models.BiometryInfo, error) {
	return models.BiometryInfo{}, ErrUnsupported
}

func (Unsupported) Authenticate(context.Context, models.PromptOptions) error {
	return ErrUnsupported
}
