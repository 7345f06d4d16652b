package utils

import (
	"context"
	"errors"

	"clubportal/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrProfileIDNotFound  = errors.New("profileID not found in context")
	ErrProfileIDNotString = errors.New("profileID in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
)

// GetProfileIDFromContext retrieves the client profile ID from the context.
// It returns the profile ID and an error if the profile ID is not found or is not a string.
func GetProfileIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.ProfileIDKey)
	if val == nil {
		return "", ErrProfileIDNotFound
	}
	profileID, ok := val.(string)
	if !ok {
		return "", ErrProfileIDNotString
	}
	return profileID, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// Context builder functions

// WithProfileID returns a context carrying the client profile ID.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, contextkeys.ProfileIDKey, profileID)
}

// WithUserID returns a context carrying the signed-in user's uid.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithComponent returns a context carrying a component name for logging.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation returns a context carrying an operation name for logging.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// GetProfileIDOrDefault returns the profile ID or def when absent.
func GetProfileIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetProfileIDFromContext(ctx); err == nil && id != "" {
		return id
	}
	return def
}
