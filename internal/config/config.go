// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types, and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any of the code below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix ATTENDANCE_.
	Keys are lowercased, the prefix is removed, and a double underscore
	marks nesting:

		ATTENDANCE_DATABASE__HOST      -> database.host
		ATTENDANCE_SERVER__PORT        -> server.port
		ATTENDANCE_RATE_LIMIT__WINDOW  -> rate_limit.window
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ATTENDANCE_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains connection parameters for the configured dialect,
// pool tuning, and the startup retry policy.
//
// Host/User/Name are only required for the network dialects; the sqlite
// dialect uses Path instead. Those cross-field rules live in Validate.
type DatabaseConfig struct {
	Dialect  string `koanf:"dialect" validate:"required,oneof=mysql postgres sqlite"`
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"ssl_mode"`
	Path     string `koanf:"path"`

	// ExplicitStudentID selects the identity mode for students: when true
	// callers must supply the id on add, otherwise the database generates it.
	ExplicitStudentID bool `koanf:"explicit_student_id"`

	MaxOpenConns    int `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"gte=0"`

	ConnectTimeout  time.Duration `koanf:"connect_timeout" validate:"min=1ms"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"min=1ms"`
	ConnectAttempts int           `koanf:"connect_attempts" validate:"min=1"`
	ConnectBackoff  time.Duration `koanf:"connect_backoff" validate:"min=0"`
}

// RedisConfig contains Redis connection details.
// An empty Address means Redis is not used.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window" validate:"min=0"`
}

// DefaultConfig returns the configuration used for every key the
// environment does not set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "5000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Dialect:         "mysql",
			Host:            "localhost",
			User:            "root",
			Name:            "attendance_db",
			SSLMode:         "disable",
			Path:            "attendance.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
			ConnectTimeout:  5 * time.Second,
			QueryTimeout:    10 * time.Second,
			ConnectAttempts: 5,
			ConnectBackoff:  time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// on top of DefaultConfig, validates it, and applies observability defaults.
//
// Behavior summary:
//   - Loads env vars with prefix ATTENDANCE_
//   - Converts env keys into koanf keys using "." nesting
//   - Unmarshals into Config
//   - Resolves database.url (if given) into the discrete database fields
//   - Validates required config blocks/fields
//   - Sets default observability if missing and validates it
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Database.URL != "" {
		if err := mainConfig.Database.applyURL(mainConfig.Database.URL); err != nil {
			return nil, err
		}
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validate.Struct(mainConfig.Observability); err != nil {
		return nil, fmt.Errorf("observability config validation failed: %w", err)
	}
	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
