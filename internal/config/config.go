// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Session transports.
const (
	TransportCookie = "cookie"
	TransportHeader = "header"
)

// Config validation errors.
var (
	ErrInvalidTransport = errors.New("SESSION_TRANSPORT must be cookie or header")
	ErrInvalidSameSite  = errors.New("COOKIE_SAMESITE must be none, lax or strict")
	ErrInsecureSameSite = errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true in production")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"4000"`

	// Store (PostgreSQL)
	DatabaseURL   string        `env:"DATABASE_URL,required,notEmpty"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Optional task list cache (Redis). Empty disables caching.
	RedisURL     string        `env:"REDIS_URL" envDefault:""`
	TaskCacheTTL time.Duration `env:"TASK_CACHE_TTL" envDefault:"60s"`

	// Session tokens
	JWTSecret        string `env:"JWT_SECRET,required,notEmpty"`
	SessionTransport string `env:"SESSION_TRANSPORT" envDefault:"cookie"`
	CookieName       string `env:"COOKIE_NAME" envDefault:"token"`
	CookieSameSite   string `env:"COOKIE_SAMESITE" envDefault:"none"`
	CookieSecure     bool   `env:"COOKIE_SECURE" envDefault:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Comma-separated list of client origins allowed to call the API with credentials.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis URL was supplied.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// SameSite converts CookieSameSite to its net/http value.
// Unknown values map to http.SameSiteDefaultMode; Validate rejects them first.
func (c *Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteDefaultMode
	}
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionTransport {
	case TransportCookie, TransportHeader:
	default:
		return ErrInvalidTransport
	}

	if c.SameSite() == http.SameSiteDefaultMode {
		return ErrInvalidSameSite
	}

	// Browsers drop SameSite=None cookies that are not Secure.
	if c.IsProduction() && c.SessionTransport == TransportCookie &&
		c.SameSite() == http.SameSiteNoneMode && !c.CookieSecure {
		return ErrInsecureSameSite
	}

	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
