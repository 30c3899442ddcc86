// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the newsdesk configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // timezone database for minimal containers

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Refresh modes select how the domain store learns about writes made by
// other instances.
const (
	RefreshOff  = "off"
	RefreshPoll = "poll"
	RefreshPush = "push"
	RefreshNATS = "nats"
)

// Password schemes.
const (
	PasswordPlain  = "plain"
	PasswordArgon2 = "argon2"
)

// Bootstrap admin defaults, used only when the users collection is empty.
const (
	DefaultBootstrapUsername = "Admin"
	DefaultBootstrapName     = "Administratori"
	DefaultBootstrapPassword = "Dd1.1"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"NEWSDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"NEWSDESK_LOG_LEVEL" envDefault:"info"`
	ServerHost    string `env:"NEWSDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NEWSDESK_SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"NEWSDESK_SESSION_SECRET,required"`

	// Storage
	Backend       string `env:"NEWSDESK_BACKEND" envDefault:"sqlite"`
	DBPath        string `env:"NEWSDESK_DB_PATH" envDefault:"./data/newsdesk.db"`
	RedisURL      string `env:"NEWSDESK_REDIS_URL"`
	RedisPrefix   string `env:"NEWSDESK_REDIS_PREFIX" envDefault:"newsdesk:"`
	MongoURI      string `env:"NEWSDESK_MONGO_URI"`
	MongoDatabase string `env:"NEWSDESK_MONGO_DATABASE" envDefault:"skenderaj-live"`

	// Change notification
	Refresh      string        `env:"NEWSDESK_REFRESH" envDefault:"off"`
	PollInterval time.Duration `env:"NEWSDESK_POLL_INTERVAL" envDefault:"15s"`
	NATSURL      string        `env:"NEWSDESK_NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubject  string        `env:"NEWSDESK_NATS_SUBJECT" envDefault:"newsdesk.changes"`

	// Reader surface
	PageSize   int    `env:"NEWSDESK_PAGE_SIZE" envDefault:"6"`
	RecentSize int    `env:"NEWSDESK_RECENT_SIZE" envDefault:"5"`
	Locale     string `env:"NEWSDESK_LOCALE" envDefault:"sq-AL"`
	Timezone   string `env:"NEWSDESK_TIMEZONE" envDefault:"Europe/Belgrade"`

	// Bootstrap and credentials
	BootstrapUsername string `env:"NEWSDESK_BOOTSTRAP_USERNAME" envDefault:"Admin"`
	BootstrapName     string `env:"NEWSDESK_BOOTSTRAP_NAME" envDefault:"Administratori"`
	BootstrapPassword string `env:"NEWSDESK_BOOTSTRAP_PASSWORD" envDefault:"Dd1.1"`
	PasswordScheme    string `env:"NEWSDESK_PASSWORD_SCHEME" envDefault:"plain"`
	SeedNews          bool   `env:"NEWSDESK_SEED_NEWS" envDefault:"true"`

	// Summarizer
	AIAPIKey    string        `env:"NEWSDESK_AI_API_KEY"`
	AIBaseURL   string        `env:"NEWSDESK_AI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	AIModel     string        `env:"NEWSDESK_AI_MODEL" envDefault:"gemini-2.5-flash"`
	AITimeout   time.Duration `env:"NEWSDESK_AI_TIMEOUT" envDefault:"8s"`
	AIRateLimit float64       `env:"NEWSDESK_AI_RATE_LIMIT" envDefault:"2"` // requests per second

	// Summary cache
	CacheTTL     time.Duration `env:"NEWSDESK_CACHE_TTL" envDefault:"6h"`
	CacheMaxSize int           `env:"NEWSDESK_CACHE_MAX_SIZE" envDefault:"1000"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if summaries should be cached in Redis.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AIEnabled returns true if the summarizer has credentials.
func (c Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

// UsesDefaultBootstrapPassword reports whether the documented default
// bootstrap password is still configured.
func (c Config) UsesDefaultBootstrapPassword() bool {
	return c.BootstrapPassword == DefaultBootstrapPassword
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() && cfg.UsesDefaultBootstrapPassword() {
		slog.Warn("NEWSDESK_BOOTSTRAP_PASSWORD is the documented default; " +
			"set a deployment-specific value before the first start")
	}
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("NEWSDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// Validate checks option values that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("NEWSDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	if slices.Contains(knownWeakSecrets, c.SessionSecret) {
		return fmt.Errorf("NEWSDESK_SESSION_SECRET is a known default value and must not be used")
	}

	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("NEWSDESK_REDIS_URL is required for the redis backend")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("NEWSDESK_MONGO_URI is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown NEWSDESK_BACKEND %q", c.Backend)
	}

	switch c.Refresh {
	case RefreshOff, RefreshNATS:
	case RefreshPoll:
		if c.PollInterval < time.Second {
			return fmt.Errorf("NEWSDESK_POLL_INTERVAL must be at least 1s, got %s", c.PollInterval)
		}
	case RefreshPush:
		if c.Backend != BackendRedis && c.Backend != BackendMongo && c.Backend != BackendMemory {
			return fmt.Errorf("NEWSDESK_REFRESH=push needs a backend with change notification, got %q", c.Backend)
		}
	default:
		return fmt.Errorf("unknown NEWSDESK_REFRESH %q", c.Refresh)
	}

	switch c.PasswordScheme {
	case PasswordPlain, PasswordArgon2:
	default:
		return fmt.Errorf("unknown NEWSDESK_PASSWORD_SCHEME %q", c.PasswordScheme)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("NEWSDESK_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.RecentSize < 0 {
		return fmt.Errorf("NEWSDESK_RECENT_SIZE must not be negative, got %d", c.RecentSize)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("parsing NEWSDESK_LOCALE %q: %w", c.Locale, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("loading NEWSDESK_TIMEZONE %q: %w", c.Timezone, err)
	}
	if strings.TrimSpace(c.BootstrapUsername) == "" || c.BootstrapPassword == "" {
		return fmt.Errorf("bootstrap admin username and password must not be empty")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
