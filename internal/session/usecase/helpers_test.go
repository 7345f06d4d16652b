package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"clubportal/internal/session/adapter/security"
	"clubportal/internal/session/domain/model"
	"clubportal/internal/shared/clock"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/storage"

	"github.com/stretchr/testify/mock"
)

var testStart = time.Unix(1_700_000_000, 0)

func tokenExpiringAt(exp time.Time) string {
	payload := fmt.Sprintf(`{"sub":"u1","exp":%d}`, exp.Unix())
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

type countingReloader struct {
	mu       sync.Mutex
	profiles []string
}

func (r *countingReloader) Reload(_ context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, profileID)
	return nil
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// flakyBackend fails writes while failSet is true.
type flakyBackend struct {
	*storage.MemoryBackend
	failSet bool
	failGet bool
}

var errBackendDown = errors.New("backend down")

func (f *flakyBackend) Set(ctx context.Context, ns string, values map[string]string) error {
	if f.failSet {
		return errBackendDown
	}
	return f.MemoryBackend.Set(ctx, ns, values)
}

func (f *flakyBackend) Get(ctx context.Context, ns, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errBackendDown
	}
	return f.MemoryBackend.Get(ctx, ns, key)
}

type recordedEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedEvents) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func recordSessionEvents(bus *eventbus.EventBus) *recordedEvents {
	rec := &recordedEvents{}
	bus.Subscribe("session.*", func(_ context.Context, ev eventbus.Event) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.types = append(rec.types, ev.Type())
		return nil
	})
	return rec
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Register(ctx context.Context, name, email, password string) error {
	return m.Called(ctx, name, email, password).Error(0)
}

func (m *mockGateway) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixture struct {
	clock    *clock.Fake
	backend  *flakyBackend
	store    storage.Store
	reloader *countingReloader
	bus      *eventbus.EventBus
	events   *recordedEvents
	manager  *Manager
}

func newFixture(cfg Config, profiles *mockProfiles) *fixture {
	f := &fixture{
		clock:    clock.NewFake(testStart),
		backend:  &flakyBackend{MemoryBackend: storage.NewMemoryBackend()},
		reloader: &countingReloader{},
		bus:      eventbus.NewEventBus(nil),
	}
	f.events = recordSessionEvents(f.bus)
	f.store, _ = storage.For(f.backend, "profile-1")
	deps := ManagerDeps{
		Decoder:  security.NewUnverifiedExpiryDecoder(),
		Clock:    f.clock,
		Reloader: f.reloader,
		Bus:      f.bus,
	}
	if profiles != nil {
		deps.Profiles = profiles
	}
	f.manager = NewManager("profile-1", f.store, deps, cfg)
	return f
}

func (f *fixture) persisted(key string) (string, bool) {
	v, ok, _ := f.store.Get(context.Background(), key)
	return v, ok
}
