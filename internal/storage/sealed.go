package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealNonceSize = 24

// ErrSealBroken is returned when a stored value fails authentication.
var ErrSealBroken = errors.New("storage: sealed value failed authentication")

// SealedBackend encrypts every value with NaCl secretbox before it reaches the
// wrapped backend. Keys stay in clear so namespaces remain inspectable.
type SealedBackend struct {
	inner Backend
	key   [32]byte
	rand  io.Reader
}

// NewSealedBackend derives a 256-bit key from secret and wraps inner.
func NewSealedBackend(inner Backend, secret string) (*SealedBackend, error) {
	if secret == "" {
		return nil, errors.New("storage: seal secret is empty")
	}
	s := &SealedBackend{inner: inner, rand: rand.Reader}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("clubportal storage seal v1"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	return s, nil
}

func (s *SealedBackend) seal(plain string) (string, error) {
	var nonce [sealNonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return "", fmt.Errorf("seal nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *SealedBackend) open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < sealNonceSize+secretbox.Overhead {
		return "", ErrSealBroken
	}
	var nonce [sealNonceSize]byte
	copy(nonce[:], raw[:sealNonceSize])
	plain, ok := secretbox.Open(nil, raw[sealNonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealBroken
	}
	return string(plain), nil
}

func (s *SealedBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, namespace, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := s.open(v)
	if err != nil {
		return "", false, fmt.Errorf("%s/%s: %w", namespace, key, err)
	}
	return plain, true, nil
}

func (s *SealedBackend) Set(ctx context.Context, namespace string, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		box, err := s.seal(v)
		if err != nil {
			return err
		}
		sealed[k] = box
	}
	return s.inner.Set(ctx, namespace, sealed)
}

func (s *SealedBackend) Remove(ctx context.Context, namespace string, keys ...string) error {
	return s.inner.Remove(ctx, namespace, keys...)
}

func (s *SealedBackend) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

// Ping forwards to the wrapped backend when it can be pinged.
func (s *SealedBackend) Ping(ctx context.Context) error {
	if p, ok := s.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
