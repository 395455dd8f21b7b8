// Package config loads server settings: defaults, then a YAML file, then
// UNITGRID_* environment variables. Command flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/unitgrid/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UNITGRID_"

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Addr  string      `yaml:"addr"`
	Log   LogConfig   `yaml:"log"`
	Store StoreConfig `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`
	Auth  AuthConfig  `yaml:"auth"`
	SSE   SSEConfig   `yaml:"sse"`
	// RetryDelay is the event-stream reconnect delay used by clients.
	RetryDelay time.Duration `yaml:"retryDelay"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	// Path is the directory of the file store.
	Path string `yaml:"path"`
	// DSN is used by the sqlite and postgres stores.
	DSN string `yaml:"dsn"`
	// EncryptionKey is a base64 AES-256 key. When set, documents are encrypted at rest.
	EncryptionKey string `yaml:"encryptionKey"`
}

// RedisConfig is used by the redis store and, whenever Addr is set, by the
// distributed lock and the cross-replica update bus.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Channel  string        `yaml:"channel"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTTL"`
}

type SSEConfig struct {
	Heartbeat time.Duration `yaml:"heartbeat"`
	Buffer    int           `yaml:"buffer"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log:  LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Kind: StoreMemory,
			Path: ".unitgrid/projects",
		},
		Redis: RedisConfig{
			Prefix:  "unitgrid:",
			Channel: "unitgrid:updates",
		},
		Auth:       AuthConfig{TokenTTL: 24 * time.Hour},
		SSE:        SSEConfig{Heartbeat: 15 * time.Second, Buffer: 10},
		RetryDelay: 2 * time.Second,
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when
// path is empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from UNITGRID_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("STORE", &c.Store.Kind)
	str("STORE_PATH", &c.Store.Path)
	str("DSN", &c.Store.DSN)
	str("STORE_KEY", &c.Store.EncryptionKey)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)
	str("REDIS_PREFIX", &c.Redis.Prefix)
	str("REDIS_CHANNEL", &c.Redis.Channel)
	dur("REDIS_TTL", &c.Redis.TTL)
	str("JWT_SECRET", &c.Auth.Secret)
	dur("TOKEN_TTL", &c.Auth.TokenTTL)
	dur("SSE_HEARTBEAT", &c.SSE.Heartbeat)
	num("SSE_BUFFER", &c.SSE.Buffer)
	dur("RETRY_DELAY", &c.RetryDelay)

	return errors.Join(errs...)
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required (set " + EnvPrefix + "JWT_SECRET)"))
	}
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the file store"))
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis store"))
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for the %s store", c.Store.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if c.Store.EncryptionKey != "" {
		if _, err := middleware.ParseKey(c.Store.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("store.encryptionKey: %w", err))
		}
	}
	if c.SSE.Heartbeat <= 0 {
		errs = append(errs, errors.New("sse.heartbeat must be positive"))
	}
	return errors.Join(errs...)
}
