// Package sealed encrypts values before they reach an underlying
// storage.KeyValueStore, giving encrypted-at-rest semantics to backends that
// would otherwise hold tokens in the clear.
package sealed

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/rryowa/candidate_session/internal/storage"
)

var ErrCorrupted = errors.New("sealed value corrupted")

type Store struct {
	next storage.KeyValueStore
	aead cipher.AEAD
}

// New wraps next with XChaCha20-Poly1305 under a 32-byte key.
func New(next storage.KeyValueStore, key []byte) (*Store, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Store{next: next, aead: aead}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	encoded, err := s.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize+s.aead.Overhead() {
		return "", ErrCorrupted
	}

	// the key name is bound as associated data so values cannot be swapped between keys
	plain, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return string(plain), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to read random bytes: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.next.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
