// Package config loads the store's settings from the environment.
//
// An optional .env file in the working directory is read first (real
// environment variables win over it), so local development needs no exports.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port int

	// Storage
	DBPath string

	// Sessions
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	CookieSecure bool

	// GitHub OAuth; sign-in routes are only mounted when ID and secret are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Google OAuth, mounted under the same rule.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Catalog and orders
	CaseSensitiveSearch bool
	IncrementSales      bool

	LogLevel slog.Level
}

// Load reads .env (if present) and then the environment. Malformed values
// fall back to their defaults with a warning; Validate reports what is missing.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	port := getint("PORT", 8080)

	return Config{
		Port:   port,
		DBPath: getenv("DB_PATH", "data/themestore.db"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     getdur("TOKEN_TTL", 24*time.Hour),
		BcryptCost:   getint("BCRYPT_COST", 12),
		CookieSecure: getbool("COOKIE_SECURE", false),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  getenv("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/github/callback", port)),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/google/callback", port)),

		CaseSensitiveSearch: getbool("CATALOG_CASE_SENSITIVE_SEARCH", false),
		IncrementSales:      getbool("ORDERS_INCREMENT_SALES", false),

		LogLevel: getlevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be set and at least 16 characters")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	return nil
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid boolean, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func getlevel(k string, def slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("invalid log level, using default", "key", k, "value", v, "default", def)
		return def
	}
	return l
}
