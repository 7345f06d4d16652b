package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"clubportal/internal/session/domain/model"
	"clubportal/internal/session/domain/repository"
	"clubportal/internal/shared/clock"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/metrics"
	"clubportal/internal/storage"
)

// SessionManager is the contract views use to drive one profile's session.
type SessionManager interface {
	Restore(ctx context.Context) (*model.Session, error)
	Login(ctx context.Context, token string, user *model.User) (*model.Session, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Current() *model.Session
	Token() string
}

// Config tunes expiry handling.
type Config struct {
	// ExpiryBuffer is added to the remaining token lifetime before the logout fires.
	ExpiryBuffer time.Duration
	DecodePolicy model.DecodePolicy
	// StorageTimeout bounds storage writes made from the expiry callback.
	StorageTimeout time.Duration
}

// DefaultConfig returns a one second buffer and the keep policy.
func DefaultConfig() Config {
	return Config{
		ExpiryBuffer:   time.Second,
		DecodePolicy:   model.DecodePolicyKeep,
		StorageTimeout: 5 * time.Second,
	}
}

// ManagerDeps are the collaborators of a Manager. Reloader, Profiles and Bus are optional.
type ManagerDeps struct {
	Decoder  repository.ExpiryDecoder
	Clock    clock.Clock
	Reloader repository.Reloader
	Profiles repository.ProfileLoader
	Bus      eventbus.EventBusInterface
	Logger   logger.Logger
}

// Manager owns the token, the user snapshot and the single expiry timer of one profile.
// It is the only writer of the token and user keys in the profile's store.
type Manager struct {
	mu        sync.Mutex
	profileID string
	store     storage.Store
	deps      ManagerDeps
	cfg       Config
	log       logger.Logger

	session *model.Session
	timer   clock.Timer
	// gen increments on every cancel; a timer callback carrying an older value is stale.
	gen uint64
}

// NewManager creates a manager with no in-memory session. Call Restore to load persisted state.
func NewManager(profileID string, store storage.Store, deps ManagerDeps, cfg Config) *Manager {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = DefaultConfig().StorageTimeout
	}
	if cfg.DecodePolicy == "" {
		cfg.DecodePolicy = model.DecodePolicyKeep
	}
	return &Manager{
		profileID: profileID,
		store:     store,
		deps:      deps,
		cfg:       cfg,
		log: deps.Logger.WithComponent("session").WithFields(map[string]interface{}{
			"profile_id": profileID,
		}),
	}
}

// ProfileID returns the profile this manager belongs to.
func (m *Manager) ProfileID() string { return m.profileID }

// Restore loads the persisted token and user snapshot. It returns nil without error
// when there is nothing to restore or the persisted token has already expired.
func (m *Manager) Restore(ctx context.Context) (*model.Session, error) {
	token, ok, err := m.store.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrSealBroken) {
		m.log.Warnf("Persisted token cannot be opened, clearing session: %v", err)
		ok, err = false, nil
	}
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to read persisted session").WithCause(err)
	}
	if !ok || token == "" {
		m.mu.Lock()
		err := m.clearLocked(ctx)
		m.mu.Unlock()
		if err != nil {
			m.log.Warnf("Failed to clear stray session keys: %v", err)
		}
		return nil, nil
	}

	exp, decodeErr := m.decode(ctx, token)
	if decodeErr != nil && m.cfg.DecodePolicy == model.DecodePolicyReject {
		m.log.Warn("Discarding persisted session with undecodable token")
		return nil, m.discard(ctx, eventbus.EventTypeSessionLoggedOut, metrics.SessionLogout)
	}
	if exp != nil && !exp.After(m.deps.Clock.Now()) {
		m.log.Info("Persisted session already expired")
		return nil, m.discard(ctx, eventbus.EventTypeSessionExpired, metrics.SessionExpired)
	}

	user, err := m.loadUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		m.log.Info("Persisted token has no user snapshot, clearing session")
		return nil, m.discard(ctx, "", "")
	}

	m.mu.Lock()
	m.setSessionLocked(&model.Session{Token: token, ExpiresAt: exp, User: user})
	if m.armLocked(exp) {
		err := m.clearLocked(ctx)
		m.mu.Unlock()
		m.announce(ctx, eventbus.EventTypeSessionExpired, metrics.SessionExpired, nil)
		return nil, m.storageErr(err)
	}
	restored := m.session.Clone()
	m.mu.Unlock()

	metrics.RecordSessionTransition(metrics.SessionRestore)
	m.log.WithFields(map[string]interface{}{"user_id": user.UID}).Info("Session restored")
	return restored, nil
}

// Login persists token and user together, replaces the in-memory session and re-arms
// the expiry timer from the new token.
func (m *Manager) Login(ctx context.Context, token string, user *model.User) (*model.Session, error) {
	if token == "" || user == nil {
		return nil, apperrors.NewValidationError("token and user are required")
	}

	exp, decodeErr := m.decode(ctx, token)
	if decodeErr != nil && m.cfg.DecodePolicy == model.DecodePolicyReject {
		if err := m.discard(ctx, eventbus.EventTypeSessionLoggedOut, metrics.SessionLogout); err != nil {
			return nil, err
		}
		return nil, apperrors.NewAuthenticationError("token could not be decoded").WithCause(apperrors.ErrTokenUndecodable)
	}
	if exp != nil && !exp.After(m.deps.Clock.Now()) {
		if err := m.discard(ctx, eventbus.EventTypeSessionExpired, metrics.SessionExpired); err != nil {
			return nil, err
		}
		return nil, apperrors.NewAuthenticationError("token already expired").WithCause(apperrors.ErrTokenExpired)
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode user snapshot").WithCause(err)
	}

	m.mu.Lock()
	if err := m.store.Set(ctx, map[string]string{
		storage.KeyToken: token,
		storage.KeyUser:  string(rawUser),
	}); err != nil {
		m.mu.Unlock()
		return nil, apperrors.NewInfrastructureError("failed to persist session").WithCause(err)
	}
	u := *user
	m.setSessionLocked(&model.Session{Token: token, ExpiresAt: exp, User: &u})
	if m.armLocked(exp) {
		err := m.clearLocked(ctx)
		m.mu.Unlock()
		m.announce(ctx, eventbus.EventTypeSessionExpired, metrics.SessionExpired, nil)
		if err != nil {
			return nil, m.storageErr(err)
		}
		return nil, apperrors.NewAuthenticationError("token already expired").WithCause(apperrors.ErrTokenExpired)
	}
	current := m.session.Clone()
	m.mu.Unlock()

	m.announce(ctx, eventbus.EventTypeSessionLoggedIn, metrics.SessionLogin, map[string]interface{}{
		"user_id":    u.UID,
		"expires_at": exp,
	})
	return current, nil
}

// Logout clears persisted and in-memory state and cancels any armed timer. Calling it
// without a session succeeds and publishes nothing.
func (m *Manager) Logout(ctx context.Context) error {
	return m.discard(ctx, eventbus.EventTypeSessionLoggedOut, metrics.SessionLogout)
}

// IsAuthenticated reports whether an in-memory token is present. Expiry is enforced by
// the timer, not here.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.Token != ""
}

// Current returns a copy of the session, or nil.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Token returns the bearer token, or "" without a session.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// Shutdown cancels the timer and leaves persisted state alone.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

// discard clears everything and, when a session was active, announces eventType.
func (m *Manager) discard(ctx context.Context, eventType, transition string) error {
	m.mu.Lock()
	had := m.session != nil
	err := m.clearLocked(ctx)
	m.mu.Unlock()

	if had && eventType != "" {
		m.announce(ctx, eventType, transition, nil)
	}
	return m.storageErr(err)
}

func (m *Manager) storageErr(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewInfrastructureError("failed to clear persisted session").WithCause(err)
}

func (m *Manager) setSessionLocked(s *model.Session) {
	before := m.session != nil
	m.session = s
	switch {
	case !before && s != nil:
		metrics.AdjustActiveSessions(1)
	case before && s == nil:
		metrics.AdjustActiveSessions(-1)
	}
}

// cancelLocked stops the armed timer, if any, and invalidates in-flight callbacks.
func (m *Manager) cancelLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// clearLocked drops the in-memory session and the persisted token and user.
func (m *Manager) clearLocked(ctx context.Context) error {
	m.cancelLocked()
	m.setSessionLocked(nil)
	return m.store.Remove(ctx, storage.KeyToken, storage.KeyUser)
}

// armLocked cancels the previous timer and schedules a new one for exp. It reports
// true when exp has already passed, leaving the caller to log out synchronously.
func (m *Manager) armLocked(exp *time.Time) bool {
	m.cancelLocked()
	if exp == nil {
		return false
	}
	remaining := exp.Sub(m.deps.Clock.Now())
	if remaining <= 0 {
		return true
	}
	gen := m.gen
	delay := remaining + m.cfg.ExpiryBuffer
	m.timer = m.deps.Clock.AfterFunc(delay, func() { m.onExpiry(gen) })
	m.log.Debugf("Expiry armed in %s", delay)
	return false
}

func (m *Manager) onExpiry(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StorageTimeout)
	defer cancel()

	m.mu.Lock()
	if gen != m.gen || m.session == nil {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	err := m.clearLocked(ctx)
	m.mu.Unlock()

	if err != nil {
		m.log.Errorf("Failed to clear expired session from storage: %v", err)
	}
	m.log.Info("Session expired, logging out")
	m.announce(ctx, eventbus.EventTypeSessionExpired, metrics.SessionExpired, nil)

	if m.deps.Reloader != nil {
		if err := m.deps.Reloader.Reload(ctx, m.profileID); err != nil {
			m.log.Warnf("Failed to force client reload: %v", err)
		}
	}
}

// decode returns the expiry instant or nil. Decode failures are logged and published,
// never returned to the caller as fatal.
func (m *Manager) decode(ctx context.Context, token string) (*time.Time, error) {
	if m.deps.Decoder == nil {
		return nil, nil
	}
	exp, ok, err := m.deps.Decoder.DecodeExpiry(token)
	if err != nil {
		metrics.RecordTokenDecodeFailure()
		m.log.WithFields(map[string]interface{}{
			"policy": string(m.cfg.DecodePolicy),
		}).Warnf("Token expiry could not be decoded: %v", err)
		m.publish(ctx, eventbus.EventTypeSessionDecodeFailed, map[string]interface{}{
			"policy": string(m.cfg.DecodePolicy),
			"reason": err.Error(),
		})
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &exp, nil
}

// loadUser returns the persisted user snapshot, fetching and caching it when a profile
// loader is configured. A nil user without error means the token cannot back a session.
func (m *Manager) loadUser(ctx context.Context, token string) (*model.User, error) {
	raw, ok, err := m.store.Get(ctx, storage.KeyUser)
	if errors.Is(err, storage.ErrSealBroken) {
		m.log.Warnf("Persisted user snapshot cannot be opened: %v", err)
		ok, err = false, nil
	}
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to read persisted user").WithCause(err)
	}
	if ok && raw != "" {
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
		m.log.Warn("Persisted user snapshot is not valid JSON")
	}

	if m.deps.Profiles == nil {
		return nil, nil
	}
	user, err := m.deps.Profiles.CurrentUser(ctx, token)
	if err != nil {
		if tokenRejected(err) {
			return nil, nil
		}
		return nil, err
	}
	if encoded, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, map[string]string{storage.KeyUser: string(encoded)}); err != nil {
			m.log.Warnf("Failed to cache user snapshot: %v", err)
		}
	}
	return user, nil
}

func tokenRejected(err error) bool {
	if apperrors.IsAuthentication(err) {
		return true
	}
	status := apperrors.HTTPStatus(err)
	return status == 401 || status == 403
}

func (m *Manager) announce(ctx context.Context, eventType, transition string, data map[string]interface{}) {
	if transition != "" {
		metrics.RecordSessionTransition(transition)
	}
	m.publish(ctx, eventType, data)
}

func (m *Manager) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if m.deps.Bus == nil || eventType == "" {
		return
	}
	ev := eventbus.NewProfileEvent(eventType, m.profileID, "session", data)
	if err := m.deps.Bus.Publish(ctx, ev); err != nil {
		m.log.Warnf("Failed to publish %s: %v", eventType, err)
	}
}
