// Package config reads docsearch settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonwraymond/docsearch/loader"
	"github.com/jonwraymond/docsearch/widget"
)

type Config struct {
	// Index location
	IndexURL string
	BaseURL  string

	// Bearer token or full Authorization header value for the index fetch.
	IndexAuth string

	FetchTimeout time.Duration

	MinQueryLen int

	// HTTP surface
	Addr string

	LogLevel slog.Level
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		IndexURL:     envOr("DOCSEARCH_INDEX_URL", loader.DefaultIndexURL),
		BaseURL:      os.Getenv("DOCSEARCH_BASE_URL"),
		IndexAuth:    os.Getenv("DOCSEARCH_INDEX_AUTH"),
		FetchTimeout: envDuration("DOCSEARCH_FETCH_TIMEOUT", loader.DefaultTimeout),
		MinQueryLen:  envInt("DOCSEARCH_MIN_QUERY_LEN", widget.DefaultMinQueryLen),
		Addr:         envOr("DOCSEARCH_ADDR", ":8080"),
		LogLevel:     envLevel("DOCSEARCH_LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = widget.DefaultMinQueryLen
	}

	return cfg
}

func (c Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("DOCSEARCH_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("DOCSEARCH_BASE_URL: %w", err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("DOCSEARCH_BASE_URL must be absolute, got %q", c.BaseURL)
		}
	}
	if _, err := c.Loader().ResolveURL(); err != nil {
		return fmt.Errorf("DOCSEARCH_INDEX_URL: %w", err)
	}
	return nil
}

// Loader returns the index loader settings.
func (c Config) Loader() loader.Config {
	return loader.Config{
		IndexURL: c.IndexURL,
		BaseURL:  c.BaseURL,
		Timeout:  c.FetchTimeout,
	}
}

// Headers returns the extra request headers for the index fetch.
func (c Config) Headers() map[string]string {
	if c.IndexAuth == "" {
		return nil
	}
	auth := c.IndexAuth
	if !strings.Contains(auth, " ") {
		auth = "Bearer " + auth
	}
	return map[string]string{"Authorization": auth}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
