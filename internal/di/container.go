package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	accessmodel "clubportal/internal/access/domain/model"
	accessusecase "clubportal/internal/access/usecase"
	clubsusecase "clubportal/internal/clubs/usecase"
	"clubportal/internal/config"
	discussionusecase "clubportal/internal/discussion/usecase"
	"clubportal/internal/portalapi"
	prefsmodel "clubportal/internal/preferences/domain/model"
	prefsusecase "clubportal/internal/preferences/usecase"
	"clubportal/internal/realtime"
	"clubportal/internal/session/adapter/security"
	sessionmodel "clubportal/internal/session/domain/model"
	sessionusecase "clubportal/internal/session/usecase"
	"clubportal/internal/shared/clock"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/storage"

	"github.com/valyala/fasthttp"
)

// Container owns every long-lived component of the edge.
type Container struct {
	Config *config.Config
	Logger logger.Logger
	Clock  clock.Clock

	Bus     *eventbus.EventBus
	Backend storage.Backend
	API     *portalapi.Client
	Hub     *realtime.Hub

	Sessions      *sessionusecase.Registry
	Authenticator *sessionusecase.Authenticator
	Discussion    *discussionusecase.DiscussionUsecase
	Clubs         *clubsusecase.ClubsUsecase
	Preferences   *prefsusecase.PreferencesUsecase
	Guard         *accessusecase.Guard
}

// Option adjusts container construction.
type Option func(*options)

type options struct {
	backend storage.Backend
	clock   clock.Clock
	dial    fasthttp.DialFunc
	views   []accessmodel.View
}

// WithBackend uses backend instead of the configured one.
func WithBackend(backend storage.Backend) Option {
	return func(o *options) { o.backend = backend }
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithAPIDial overrides how the club API client connects.
func WithAPIDial(dial fasthttp.DialFunc) Option {
	return func(o *options) { o.dial = dial }
}

// WithViews replaces the default guarded views.
func WithViews(views []accessmodel.View) Option {
	return func(o *options) { o.views = views }
}

// NewContainer builds and wires every module.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if log == nil {
		log = logger.NewLoggerWithBackend(cfg.Logging.Backend, cfg.Logging.Level, cfg.Logging.Format)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.views == nil {
		o.views = accessmodel.DefaultViews()
	}

	c := &Container{Config: cfg, Logger: log, Clock: o.clock}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(ctx, cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}
	c.Backend = backend

	api, err := portalapi.NewClient(portalapi.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		MaxConns: cfg.API.MaxConns,
		Dial:     o.dial,
	}, log)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, fmt.Errorf("failed to create club API client: %w", err)
	}
	c.API = api

	c.Bus = eventbus.NewEventBusWithConfig(log.WithComponent("eventbus"), eventbus.BusConfig{
		AsyncProcessing: cfg.Events.Async,
		MaxRetries:      cfg.Events.MaxRetries,
		RetryDelay:      cfg.Events.RetryDelay,
	})
	c.Hub = realtime.NewHub(cfg.Realtime.SendBuffer, log)
	c.Hub.Forward(c.Bus)

	policy, err := sessionmodel.ParseDecodePolicy(cfg.Session.DecodePolicy)
	if err != nil {
		return nil, err
	}
	c.Sessions = sessionusecase.NewRegistry(backend, sessionusecase.ManagerDeps{
		Decoder:  security.NewUnverifiedExpiryDecoder(),
		Clock:    o.clock,
		Reloader: c.Hub,
		Profiles: api,
		Bus:      c.Bus,
		Logger:   log,
	}, sessionusecase.Config{
		ExpiryBuffer:   cfg.Session.ExpiryBuffer,
		DecodePolicy:   policy,
		StorageTimeout: cfg.Session.StorageTimeout,
	})
	c.Authenticator = sessionusecase.NewAuthenticator(api, c.Sessions, log)

	c.Discussion = discussionusecase.NewDiscussionUsecase(api, discussionusecase.NewBoard(), c.Bus, log)
	c.Clubs = clubsusecase.NewClubsUsecase(api, log)
	c.Preferences = prefsusecase.NewPreferencesUsecase(backend, prefsusecase.Config{
		DefaultPalette: prefsmodel.Palette(cfg.Preferences.DefaultPalette),
		StorageTimeout: cfg.Session.StorageTimeout,
	}, c.Bus, log)

	c.Guard, err = accessusecase.NewGuard(o.views, log)
	if err != nil {
		return nil, fmt.Errorf("failed to compile view guards: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"storage":       cfg.Storage.Backend,
		"api":           cfg.API.BaseURL,
		"decode_policy": string(policy),
	}).Info("Container initialized")
	return c, nil
}

// OpenBackend connects the configured storage backend and seals it when a key is set.
func OpenBackend(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.Backend, error) {
	var backend storage.Backend
	switch cfg.Backend {
	case config.StorageMemory, "":
		backend = storage.NewMemoryBackend()
	case config.StorageRedis:
		client := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		rb := storage.NewRedisBackend(client, storage.RedisOptions{Prefix: cfg.Redis.Prefix, TTL: cfg.Redis.TTL}, log)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rb.Ping(pingCtx); err != nil {
			_ = rb.Close(ctx)
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		backend = rb
	case config.StorageMongoDB:
		connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		mb, err := storage.ConnectMongoBackend(connCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, log)
		if err != nil {
			return nil, err
		}
		backend = mb
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.SealKey == "" {
		return backend, nil
	}
	sealed, err := storage.NewSealedBackend(backend, cfg.SealKey)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, fmt.Errorf("failed to set up storage sealing: %w", err)
	}
	return sealed, nil
}

// HealthCheck pings the storage backend when it has a server behind it.
func (c *Container) HealthCheck(ctx context.Context) error {
	if p, ok := c.Backend.(storage.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("storage unhealthy: %w", err)
		}
	}
	return nil
}

// Close stops every timer and releases connections. Persisted sessions survive.
func (c *Container) Close(ctx context.Context) error {
	c.Sessions.Close()
	c.Hub.Close()
	c.API.Close()
	if err := c.Backend.Close(ctx); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
