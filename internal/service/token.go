package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenNoExpiry  = errors.New("token has no exp claim")
)

// tokenExpiry reads exp from the payload without verifying the signature;
// the client never holds the signing key.
func tokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
