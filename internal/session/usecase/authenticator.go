package usecase

import (
	"context"

	"clubportal/internal/session/domain/model"
	"clubportal/internal/session/domain/repository"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/logger"
)

// AuthenticatorInterface is what the session views call.
type AuthenticatorInterface interface {
	SignIn(ctx context.Context, profileID, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, profileID, name, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, profileID string) error
	Current(ctx context.Context, profileID string) (*model.Session, error)
}

// Authenticator runs the credential flows against the club API and hands the result
// to the profile's Manager.
type Authenticator struct {
	gateway  repository.AuthGateway
	registry *Registry
	log      logger.Logger
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(gateway repository.AuthGateway, registry *Registry, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Authenticator{gateway: gateway, registry: registry, log: log.WithComponent("session.auth")}
}

// SignIn exchanges credentials for a token, fetches the user snapshot and logs in.
func (a *Authenticator) SignIn(ctx context.Context, profileID, email, password string) (*model.Session, error) {
	token, err := a.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.NewUpstreamError("login response carried no token", 0)
	}

	user, err := a.gateway.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	m, err := a.registry.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	session, err := m.Login(ctx, token, user)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(map[string]interface{}{
		"profile_id": profileID,
		"user_id":    user.UID,
	}).Info("Signed in")
	return session, nil
}

// SignUp registers the account, then signs in with the same credentials.
func (a *Authenticator) SignUp(ctx context.Context, profileID, name, email, password string) (*model.Session, error) {
	if err := a.gateway.Register(ctx, name, email, password); err != nil {
		return nil, err
	}
	return a.SignIn(ctx, profileID, email, password)
}

// SignOut logs the profile out.
func (a *Authenticator) SignOut(ctx context.Context, profileID string) error {
	m, err := a.registry.Get(ctx, profileID)
	if err != nil {
		return err
	}
	return m.Logout(ctx)
}

// Current returns the profile's session, or nil when signed out.
func (a *Authenticator) Current(ctx context.Context, profileID string) (*model.Session, error) {
	m, err := a.registry.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return m.Current(), nil
}
