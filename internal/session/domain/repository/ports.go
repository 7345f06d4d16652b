package repository

import (
	"context"
	"time"

	"clubportal/internal/session/domain/model"
)

// ExpiryDecoder reads the expiry claim from a token without verifying it.
type ExpiryDecoder interface {
	// DecodeExpiry returns ok=false when the payload has no exp claim and an error
	// when the token is malformed.
	DecodeExpiry(token string) (exp time.Time, ok bool, err error)
}

// AuthGateway is the part of the club API the session flow calls.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (token string, err error)
	Register(ctx context.Context, name, email, password string) error
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// ProfileLoader fetches the user snapshot for a token.
type ProfileLoader interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Reloader forces every view of a profile to reload from scratch.
type Reloader interface {
	Reload(ctx context.Context, profileID string) error
}
