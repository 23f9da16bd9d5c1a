package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// State backends.
const (
	StateBackendMemory   = "memory"
	StateBackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Content   ContentConfig
	Search    SearchConfig
	State     StateConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
	// TrustedProxies are the proxy addresses or CIDRs whose forwarding
	// headers are believed when resolving the client IP. Empty trusts none.
	TrustedProxies []string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// DSN returns the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RedisConfig holds the search cache connection. An empty Addr selects the
// in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ContentConfig points at the site content on disk.
type ContentConfig struct {
	Dir string
}

// SearchConfig tunes the fuzzy search.
type SearchConfig struct {
	Threshold      float64
	Limit          int
	MinTokenLength int
	CacheTTL       time.Duration
}

// StateConfig selects where calculator form state is persisted.
type StateConfig struct {
	Backend string
	// IdleExpiry drops in-memory states not saved for this long. Zero keeps
	// them until restart.
	IdleExpiry time.Duration
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "randwise")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONTENT_DIR", "content")
	v.SetDefault("SEARCH_THRESHOLD", 0.4)
	v.SetDefault("SEARCH_LIMIT", 10)
	v.SetDefault("SEARCH_MIN_TOKEN_LENGTH", 2)
	v.SetDefault("SEARCH_CACHE_TTL", "1h")
	v.SetDefault("STATE_BACKEND", StateBackendMemory)
	v.SetDefault("STATE_IDLE_EXPIRY", "24h")
	v.SetDefault("RATE_LIMIT_REQUESTS", 120)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Env:            v.GetString("ENV"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Content: ContentConfig{
			Dir: v.GetString("CONTENT_DIR"),
		},
		Search: SearchConfig{
			Threshold:      v.GetFloat64("SEARCH_THRESHOLD"),
			Limit:          v.GetInt("SEARCH_LIMIT"),
			MinTokenLength: v.GetInt("SEARCH_MIN_TOKEN_LENGTH"),
			CacheTTL:       v.GetDuration("SEARCH_CACHE_TTL"),
		},
		State: StateConfig{
			Backend:    strings.ToLower(v.GetString("STATE_BACKEND")),
			IdleExpiry: v.GetDuration("STATE_IDLE_EXPIRY"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.State.Backend {
	case StateBackendMemory:
	case StateBackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be %q or %q", StateBackendMemory, StateBackendPostgres)
	}
	if c.State.IdleExpiry < 0 {
		return fmt.Errorf("STATE_IDLE_EXPIRY must not be negative")
	}

	if c.Search.Threshold <= 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be in (0, 1]")
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("SEARCH_LIMIT must be at least 1")
	}
	if c.Search.MinTokenLength < 1 {
		return fmt.Errorf("SEARCH_MIN_TOKEN_LENGTH must be at least 1")
	}
	if c.Search.CacheTTL <= 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must be positive")
	}

	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// Validate checks the connection settings needed by the postgres backend.
func (c DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.PoolMin > c.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// splitList splits a comma-separated setting into its trimmed, non-empty
// parts.
func splitList(list string) []string {
	if list == "" {
		return []string{}
	}

	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
