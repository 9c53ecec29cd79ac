// Package config loads the games API settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers understood by the server.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full process configuration.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Storage  StorageConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// ServerConfig covers the HTTP listener. TrustedProxies takes bare IPs or
// CIDR ranges; empty means every peer is trusted when TrustProxy is set.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	TrustProxy      bool          `env:"SERVER_TRUST_PROXY" envDefault:"false"`
	TrustedProxies  []string      `env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
}

// Address is the listen address in host:port form.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"mongo"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017/gameshelf"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"gameshelf"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"games"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`
}

// DatabaseName prefers the database named in the URI path over Database.
func (m MongoConfig) DatabaseName() string {
	if u, err := url.Parse(m.URI); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return m.Database
}

type PostgresConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"gameshelf"`
	Password        string        `env:"POSTGRES_PASSWORD"`
	DBName          string        `env:"POSTGRES_DB" envDefault:"gameshelf"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int           `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns        int           `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"5m"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// CacheConfig controls the Redis cache in front of game lookups by id.
type CacheConfig struct {
	Enabled   bool          `env:"CACHE_ENABLED" envDefault:"false"`
	TTL       time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	KeyPrefix string        `env:"CACHE_KEY_PREFIX" envDefault:"game:"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := new(Config)
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q: want mongo, postgres or memory", c.Storage.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL %s must be positive", c.Cache.TTL))
	}

	return errors.Join(errs...)
}

// CacheEnabled reports whether lookups should go through Redis.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && c.Redis.Host != ""
}
