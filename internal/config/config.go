// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Cache
	CacheBackend string // "pebble" (default), "sqlite", "postgres" or "memory"
	CachePath    string
	CacheTTL     time.Duration // 0 means entries never expire
	PostgresDSN  string
	EnableSQLite bool // Must be true to use SQLite (safety flag)

	// Resolver
	DebounceWindow time.Duration

	// Outbound HTTP
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	FetchTimeout time.Duration

	// Providers
	GoogleBooksBaseURL           string
	GoogleBooksAPIKey            string
	OpenLibraryBaseURL           string
	OpenLibraryUserAgent         string
	OpenLibraryRequestsPerSecond float64 // 0 disables client-side throttling

	// Server
	Host               string
	Port               int
	RateLimitPerMinute int
	RateLimitBurst     int

	// Basic auth for cache maintenance routes
	BasicAuthEnabled  bool
	BasicAuthUsername string
	BasicAuthPassword string // plaintext or bcrypt hash

	LogLevel string
}

// AppConfig is the configuration loaded at startup. Code that runs while
// the server is serving requests reads Current instead.
var AppConfig Config

var current atomic.Pointer[Config]

// Current returns the most recently published configuration, or the zero
// Config when nothing has been published.
func Current() Config {
	if c := current.Load(); c != nil {
		return *c
	}
	return Config{}
}

// Publish makes c visible to request handlers. Callers validate first.
func Publish(c Config) {
	current.Store(&c)
}

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("cache.backend", "pebble")
	viper.SetDefault("cache.path", "")
	viper.SetDefault("cache.ttl", 7*24*time.Hour)
	viper.SetDefault("cache.postgres_dsn", "")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)

	viper.SetDefault("resolver.debounce_window", 300*time.Millisecond)

	viper.SetDefault("retry.max_retries", 2)
	viper.SetDefault("retry.base_delay", 500*time.Millisecond)
	viper.SetDefault("retry.max_delay", 3*time.Second)
	viper.SetDefault("fetch.timeout", 8*time.Second)

	viper.SetDefault("providers.google_books.base_url", "https://www.googleapis.com/books/v1")
	viper.SetDefault("providers.google_books.api_key", "")
	viper.SetDefault("providers.open_library.base_url", "https://openlibrary.org")
	viper.SetDefault("providers.open_library.user_agent", "")
	viper.SetDefault("providers.open_library.requests_per_second", 0.0)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8484)
	viper.SetDefault("server.rate_limit_per_minute", 60)
	viper.SetDefault("server.rate_limit_burst", 10)

	viper.SetDefault("basic_auth_enabled", false)
	viper.SetDefault("basic_auth_username", "")
	viper.SetDefault("basic_auth_password", "")

	viper.SetDefault("log_level", "info")
}

// InitConfig initializes the application configuration
func InitConfig() {
	AppConfig = Load()
}

// Load builds a Config from viper without touching AppConfig.
func Load() Config {
	SetDefaults()

	c := Config{
		CacheBackend: strings.ToLower(viper.GetString("cache.backend")),
		CachePath:    viper.GetString("cache.path"),
		CacheTTL:     viper.GetDuration("cache.ttl"),
		PostgresDSN:  viper.GetString("cache.postgres_dsn"),
		EnableSQLite: viper.GetBool("enable_sqlite3_i_know_the_risks"),

		DebounceWindow: viper.GetDuration("resolver.debounce_window"),

		MaxRetries:   viper.GetInt("retry.max_retries"),
		BaseDelay:    viper.GetDuration("retry.base_delay"),
		MaxDelay:     viper.GetDuration("retry.max_delay"),
		FetchTimeout: viper.GetDuration("fetch.timeout"),

		GoogleBooksBaseURL:           viper.GetString("providers.google_books.base_url"),
		GoogleBooksAPIKey:            viper.GetString("providers.google_books.api_key"),
		OpenLibraryBaseURL:           viper.GetString("providers.open_library.base_url"),
		OpenLibraryUserAgent:         viper.GetString("providers.open_library.user_agent"),
		OpenLibraryRequestsPerSecond: viper.GetFloat64("providers.open_library.requests_per_second"),

		Host:               viper.GetString("server.host"),
		Port:               viper.GetInt("server.port"),
		RateLimitPerMinute: viper.GetInt("server.rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("server.rate_limit_burst"),

		BasicAuthEnabled:  viper.GetBool("basic_auth_enabled"),
		BasicAuthUsername: viper.GetString("basic_auth_username"),
		BasicAuthPassword: viper.GetString("basic_auth_password"),

		LogLevel: strings.ToLower(viper.GetString("log_level")),
	}

	// Normalize cache backend
	if c.CacheBackend == "sqlite3" {
		c.CacheBackend = "sqlite"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "pebble"
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath(c.CacheBackend)
	}
	return c
}

// DefaultCachePath places the cache under the user's cache directory.
func DefaultCachePath(backend string) string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	name := "cache.pebble"
	if backend == "sqlite" {
		name = "cache.db"
	}
	return filepath.Join(base, "library-catalog", name)
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case "pebble", "memory":
	case "sqlite":
		if !c.EnableSQLite {
			return fmt.Errorf("cache.backend sqlite requires enable_sqlite3_i_know_the_risks")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("cache.backend postgres requires cache.postgres_dsn")
		}
	default:
		return fmt.Errorf("unsupported cache.backend %q (supported: pebble, sqlite, postgres, memory)", c.CacheBackend)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.DebounceWindow < 0 {
		return fmt.Errorf("resolver.debounce_window must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.BaseDelay < 0 || c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("retry delays must satisfy 0 <= base_delay <= max_delay")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Port)
	}
	if c.BasicAuthEnabled && (c.BasicAuthUsername == "" || c.BasicAuthPassword == "") {
		return fmt.Errorf("basic_auth_enabled requires basic_auth_username and basic_auth_password")
	}
	return nil
}
