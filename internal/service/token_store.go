package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/storage"
)

// TokenStore is the only owner of session credentials. Reads never fail:
// any backend error is reported as an absent value.
type TokenStore struct {
	store storage.KeyValueStore
	log   *zap.SugaredLogger
}

func NewTokenStore(secure storage.KeyValueStore, log *zap.SugaredLogger) *TokenStore {
	return &TokenStore{store: secure, log: log}
}

func (s *TokenStore) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("secure set %s: %w", key, err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Debugw("secure read failed, treating as absent", "key", key, "error", err)
		}
		return "", false
	}
	return v, v != ""
}

func (s *TokenStore) Remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("secure remove %s: %w", key, err)
	}
	return nil
}

func (s *TokenStore) AccessToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, models.AccessTokenKey)
}

func (s *TokenStore) RefreshToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, models.RefreshTokenKey)
}

// SaveCredentials writes the access token, then the refresh token. If either
// write fails both keys are removed so no half pair survives.
func (s *TokenStore) SaveCredentials(ctx context.Context, creds models.Credentials) error {
	err := s.Set(ctx, models.AccessTokenKey, creds.AccessToken)
	if err == nil {
		err = s.Set(ctx, models.RefreshTokenKey, creds.RefreshToken)
	}
	if err != nil {
		s.ClearCredentials(ctx)
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *TokenStore) ClearCredentials(ctx context.Context) {
	for _, key := range []string{models.AccessTokenKey, models.RefreshTokenKey} {
		if err := s.Remove(ctx, key); err != nil {
			s.log.Warnw("failed to remove credential", "key", key, "error", err)
		}
	}
}
