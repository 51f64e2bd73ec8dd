package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	SessionExpiry time.Duration
	OTPExpiry     time.Duration
	EncryptionKey []byte // 32-byte key for integration token encryption at rest

	// OAuth providers (integration linking)
	GitHubClientID       string
	GitHubClientSecret   string
	SpotifyClientID      string
	SpotifyClientSecret  string
	LinkedInClientID     string
	LinkedInClientSecret string
	GoogleClientID       string
	GoogleClientSecret   string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Digital Life Wrapped"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // Required: base URL for OAuth callbacks and public story links
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/wrapped.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		SessionExpiry: envDuration("SESSION_EXPIRY", 168*time.Hour), // 7 days
		OTPExpiry:     envDuration("OTP_EXPIRY", 10*time.Minute),
		EncryptionKey: envKey("ENCRYPTION_KEY"),

		// OAuth providers
		GitHubClientID:       envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:   envString("GITHUB_CLIENT_SECRET", ""),
		SpotifyClientID:      envString("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret:  envString("SPOTIFY_CLIENT_SECRET", ""),
		LinkedInClientID:     envString("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: envString("LINKEDIN_CLIENT_SECRET", ""),
		GoogleClientID:       envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   envString("GOOGLE_CLIENT_SECRET", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production
// deployments. Development allows email to fall back to log mode for local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

// envKey decodes a required base64-encoded 32-byte key.
func envKey(key string) []byte {
	raw := envRequired(key)
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(b) != 32 {
		slog.Error("config key must be 32 bytes, base64 encoded", "key", key)
		os.Exit(1)
	}
	return b
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded. Safe to carry in request contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		SupportEmail: c.SupportEmail,

		EmailFrom: c.EmailFrom,

		GitHubClientID:   c.GitHubClientID,
		SpotifyClientID:  c.SpotifyClientID,
		LinkedInClientID: c.LinkedInClientID,
		GoogleClientID:   c.GoogleClientID,
	}
}
