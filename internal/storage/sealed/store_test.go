package sealed

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/candidate_session/internal/storage"
	"github.com/rryowa/candidate_session/internal/storage/memory"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestStoreEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKeyValueStore()
	s, err := New(backend, testKey(1))
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "access_token", "secret-jwt"))

	raw, err := backend.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-jwt")

	v, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, "secret-jwt", v)
}

func TestStoreRejectsSwappedKeys(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKeyValueStore()
	s, err := New(backend, testKey(1))
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "refresh_token", "r1"))
	raw, err := backend.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, "access_token", raw))

	_, err = s.Get(ctx, "access_token")
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestStoreRejectsWrongKeyMaterial(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewKeyValueStore()
	writer, err := New(backend, testKey(1))
	require.NoError(t, err)
	reader, err := New(backend, testKey(2))
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, "k", "v"))
	_, err = reader.Get(ctx, "k")
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestStorePassesThroughMissAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(memory.NewKeyValueStore(), testKey(3))
	require.NoError(t, err)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New(memory.NewKeyValueStore(), []byte("short"))
	require.Error(t, err)
}
