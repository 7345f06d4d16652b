package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealedBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	sealed, err := NewSealedBackend(inner, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, sealed.Set(ctx, "p", map[string]string{KeyToken: "header.payload.sig"}))

	raw, ok, err := inner.Get(ctx, "p", KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "payload")

	plain, ok, err := sealed.Get(ctx, "p", KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "header.payload.sig", plain)
}

func TestSealedBackend_RejectsTampering(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	sealed, err := NewSealedBackend(inner, "secret")
	require.NoError(t, err)
	require.NoError(t, sealed.Set(ctx, "p", map[string]string{KeyUser: `{"uid":"u1"}`}))

	raw, _, _ := inner.Get(ctx, "p", KeyUser)
	flipped := []byte(raw)
	mid := len(flipped) / 2
	if flipped[mid] == 'A' {
		flipped[mid] = 'B'
	} else {
		flipped[mid] = 'A'
	}
	require.NoError(t, inner.Set(ctx, "p", map[string]string{KeyUser: string(flipped)}))

	_, ok, err := sealed.Get(ctx, "p", KeyUser)
	assert.ErrorIs(t, err, ErrSealBroken)
	assert.False(t, ok)
}

func TestSealedBackend_WrongSecretCannotOpen(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	a, _ := NewSealedBackend(inner, "one")
	b, _ := NewSealedBackend(inner, "two")
	require.NoError(t, a.Set(ctx, "p", map[string]string{KeyPalette: "ocean"}))

	_, _, err := b.Get(ctx, "p", KeyPalette)
	assert.ErrorIs(t, err, ErrSealBroken)
}

func TestSealedBackend_GarbageValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	sealed, _ := NewSealedBackend(inner, "s")
	require.NoError(t, inner.Set(ctx, "p", map[string]string{KeyToken: strings.Repeat("!", 10)}))
	_, _, err := sealed.Get(ctx, "p", KeyToken)
	assert.ErrorIs(t, err, ErrSealBroken)
}

func TestNewSealedBackend_EmptySecret(t *testing.T) {
	_, err := NewSealedBackend(NewMemoryBackend(), "")
	assert.Error(t, err)
}
