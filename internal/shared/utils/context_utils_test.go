package utils

import (
	"context"
	"testing"

	"clubportal/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileIDFromContext(t *testing.T) {
	ctx := WithProfileID(context.Background(), "profile-1")
	id, err := GetProfileIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", id)

	_, err = GetProfileIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrProfileIDNotFound)

	bad := context.WithValue(context.Background(), contextkeys.ProfileIDKey, 42)
	_, err = GetProfileIDFromContext(bad)
	assert.ErrorIs(t, err, ErrProfileIDNotString)
}

func TestGetRequestIDFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	id, err := GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-1", id)

	_, err = GetRequestIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrRequestIDNotFound)
}

func TestGetProfileIDOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", GetProfileIDOrDefault(context.Background(), "fallback"))
	assert.Equal(t, "p", GetProfileIDOrDefault(WithProfileID(context.Background(), "p"), "fallback"))
}

func TestContextBuilders(t *testing.T) {
	ctx := WithOperation(WithComponent(WithUserID(context.Background(), "u1"), "session"), "login")
	assert.Equal(t, "u1", ctx.Value(contextkeys.UserIDKey))
	assert.Equal(t, "session", ctx.Value(contextkeys.ComponentKey))
	assert.Equal(t, "login", ctx.Value(contextkeys.OperationKey))
}
