package usecase

import (
	"context"
	"sort"
	"sync"

	"clubportal/internal/session/domain/repository"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/logger"
	"clubportal/internal/storage"
)

type registryEntry struct {
	once    sync.Once
	manager *Manager
	err     error
}

// Registry holds one Manager per client profile. A manager is restored from storage
// the first time its profile is touched.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*registryEntry
	managers map[string]*Manager
	backend  storage.Backend
	deps     ManagerDeps
	cfg      Config
	log      logger.Logger
}

// NewRegistry creates an empty registry over backend.
func NewRegistry(backend storage.Backend, deps ManagerDeps, cfg Config) *Registry {
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Registry{
		entries:  make(map[string]*registryEntry),
		managers: make(map[string]*Manager),
		backend:  backend,
		deps:     deps,
		cfg:      cfg,
		log:      deps.Logger.WithComponent("session.registry"),
	}
}

// SetReloader installs the reloader used by managers created after this call.
func (r *Registry) SetReloader(reloader repository.Reloader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deps.Reloader = reloader
}

// Get returns the restored manager for profileID, creating it on first use.
func (r *Registry) Get(ctx context.Context, profileID string) (*Manager, error) {
	store, err := storage.For(r.backend, profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	entry, ok := r.entries[profileID]
	if !ok {
		entry = &registryEntry{}
		r.entries[profileID] = entry
	}
	deps := r.deps
	r.mu.Unlock()

	entry.once.Do(func() {
		m := NewManager(profileID, store, deps, r.cfg)
		if _, err := m.Restore(ctx); err != nil {
			entry.err = err
			return
		}
		entry.manager = m
		r.mu.Lock()
		r.managers[profileID] = m
		r.mu.Unlock()
	})

	if entry.err != nil {
		r.mu.Lock()
		if r.entries[profileID] == entry {
			delete(r.entries, profileID)
		}
		r.mu.Unlock()
		r.log.WithFields(map[string]interface{}{"profile_id": profileID}).
			Warnf("Session restore failed: %v", entry.err)
		return nil, entry.err
	}
	return entry.manager, nil
}

// Token returns the profile's bearer token, or an authentication error when the
// profile is signed out.
func (r *Registry) Token(ctx context.Context, profileID string) (string, error) {
	m, err := r.Get(ctx, profileID)
	if err != nil {
		return "", err
	}
	token := m.Token()
	if token == "" {
		return "", apperrors.NewAuthenticationError("Not signed in").WithCause(apperrors.ErrNoSession)
	}
	return token, nil
}

// Lookup returns an already restored manager without touching storage.
func (r *Registry) Lookup(profileID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[profileID]
	return m, ok
}

// Profiles lists profiles with a loaded manager.
func (r *Registry) Profiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.managers))
	for id := range r.managers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close cancels every armed timer. Persisted sessions survive for the next start.
func (r *Registry) Close() {
	r.mu.Lock()
	managers := r.managers
	r.entries = make(map[string]*registryEntry)
	r.managers = make(map[string]*Manager)
	r.mu.Unlock()

	for _, m := range managers {
		m.Shutdown()
	}
}
