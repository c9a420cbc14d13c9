package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/candidate_session/internal/storage"
)

func newTestStore(t *testing.T, prefix string) (*KeyValueStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewKeyValueStore(rdb, prefix), mr
}

func TestKeyValueStoreUsesPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "candidate:")

	require.NoError(t, s.Set(ctx, "device_id", "abc"))

	raw, err := mr.Get("candidate:device_id")
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)
	assert.False(t, mr.Exists("device_id"))

	v, err := s.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestKeyValueStoreMissingKey(t *testing.T) {
	s, _ := newTestStore(t, "p:")

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKeyValueStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "p:")

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	assert.False(t, mr.Exists("p:k"))
}

func TestKeyValueStoreSurfacesConnectionErrors(t *testing.T) {
	s, mr := newTestStore(t, "p:")
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}
