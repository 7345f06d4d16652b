// Package config loads the edge configuration from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory  = "memory"
	StorageRedis   = "redis"
	StorageMongoDB = "mongodb"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"3000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowOrigins    string        `env:"ALLOW_ORIGINS" envDefault:"*"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// APIConfig points at the club API.
type APIConfig struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"http://localhost:8000"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxConns int           `env:"MAX_CONNS" envDefault:"64"`
}

// SessionConfig tunes the session managers.
type SessionConfig struct {
	ExpiryBuffer   time.Duration `env:"EXPIRY_BUFFER" envDefault:"1s"`
	DecodePolicy   string        `env:"DECODE_POLICY" envDefault:"keep"`
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT" envDefault:"5s"`
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	PoolSize int           `env:"POOL_SIZE" envDefault:"10"`
	Prefix   string        `env:"PREFIX" envDefault:"clubportal:profile:"`
	TTL      time.Duration `env:"TTL" envDefault:"720h"`
}

// MongoConfig configures the mongodb storage backend.
type MongoConfig struct {
	URI        string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database   string `env:"DATABASE" envDefault:"clubportal"`
	Collection string `env:"COLLECTION" envDefault:"profiles"`
}

// StorageConfig selects and configures the profile storage.
type StorageConfig struct {
	Backend string      `env:"BACKEND" envDefault:"memory"`
	SealKey string      `env:"SEAL_KEY"`
	Redis   RedisConfig `envPrefix:"REDIS_"`
	Mongo   MongoConfig `envPrefix:"MONGO_"`
}

// LoggingConfig picks the logger.
type LoggingConfig struct {
	Backend string `env:"BACKEND" envDefault:"logrus"`
	Level   string `env:"LEVEL" envDefault:"info"`
	Format  string `env:"FORMAT" envDefault:"text"`
}

// PreferencesConfig holds preference defaults.
type PreferencesConfig struct {
	DefaultPalette string `env:"DEFAULT_PALETTE" envDefault:"dark"`
}

// RealtimeConfig tunes the websocket hub.
type RealtimeConfig struct {
	SendBuffer int `env:"SEND_BUFFER" envDefault:"16"`
}

// EventsConfig tunes the in-process event bus.
type EventsConfig struct {
	Async      bool          `env:"ASYNC" envDefault:"false"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"0"`
	RetryDelay time.Duration `env:"RETRY_DELAY" envDefault:"100ms"`
}

// Config is the whole edge configuration.
type Config struct {
	Environment string            `env:"PORTAL_ENV" envDefault:"development"`
	Server      ServerConfig      `envPrefix:"SERVER_"`
	API         APIConfig         `envPrefix:"PORTAL_API_"`
	Session     SessionConfig     `envPrefix:"SESSION_"`
	Storage     StorageConfig     `envPrefix:"STORAGE_"`
	Logging     LoggingConfig     `envPrefix:"LOG_"`
	Preferences PreferencesConfig `envPrefix:"PREFERENCES_"`
	Realtime    RealtimeConfig    `envPrefix:"REALTIME_"`
	Events      EventsConfig      `envPrefix:"EVENTS_"`
}

// Load reads files (default .env) when present, then the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the edge cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis, StorageMongoDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Session.DecodePolicy {
	case "keep", "reject":
	default:
		return fmt.Errorf("unknown session decode policy %q", c.Session.DecodePolicy)
	}
	if c.Session.ExpiryBuffer < 0 {
		return errors.New("session expiry buffer must not be negative")
	}
	if c.Events.MaxRetries < 0 {
		return errors.New("event handler retries must not be negative")
	}
	if c.API.BaseURL == "" {
		return errors.New("PORTAL_API_BASE_URL is required")
	}
	return nil
}

// IsProduction reports whether the edge runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
