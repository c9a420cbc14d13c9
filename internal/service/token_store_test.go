package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/storage/memory"
)

// flakyStore fails writes or reads for selected keys.
type flakyStore struct {
	*memory.KeyValueStore
	failSet map[string]bool
	failGet bool
}

func (f flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet[key] {
		return errors.New("keystore unavailable")
	}
	return f.KeyValueStore.Set(ctx, key, value)
}

func (f flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errors.New("keystore unavailable")
	}
	return f.KeyValueStore.Get(ctx, key)
}

func TestTokenStoreReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKeyValueStore()
	require.NoError(t, backend.Set(ctx, models.AccessTokenKey, "access"))

	s := NewTokenStore(flakyStore{KeyValueStore: backend, failGet: true}, zap.NewNop().Sugar())

	_, ok := s.AccessToken(ctx)
	assert.False(t, ok)
}

func TestTokenStoreSaveCredentialsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKeyValueStore()
	s := NewTokenStore(flakyStore{
		KeyValueStore: backend,
		failSet:       map[string]bool{models.RefreshTokenKey: true},
	}, zap.NewNop().Sugar())

	err := s.SaveCredentials(ctx, models.Credentials{AccessToken: "a", RefreshToken: "r"})
	require.Error(t, err)

	_, ok := s.AccessToken(ctx)
	assert.False(t, ok)
	assert.Zero(t, backend.Len())
}

func TestTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore(memory.NewKeyValueStore(), zap.NewNop().Sugar())

	require.NoError(t, s.SaveCredentials(ctx, models.Credentials{AccessToken: "a", RefreshToken: "r"}))

	access, ok := s.AccessToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "a", access)
	refresh, ok := s.RefreshToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "r", refresh)

	s.ClearCredentials(ctx)
	s.ClearCredentials(ctx)
	_, ok = s.RefreshToken(ctx)
	assert.False(t, ok)
}
