// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendGitHub   = "github"
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Backends lists every supported store backend.
var Backends = []string{BackendGitHub, BackendFile, BackendMemory, BackendPostgres, BackendS3}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	StoreBackend string

	// GitHub contents store
	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubPath   string
	GitHubBranch string
	GitHubAPIURL string
	GitHubRawURL string

	StaticFallbackPath string
	ProxyURL           string

	DefaultCategory  string
	N8NWebhookSecret string

	HTTPTimeout     time.Duration
	WriteRetries    int
	SerializeWrites bool
	ViewRateLimit   int

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache), optional
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Key       string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Malformed numeric or duration values
// are reported as errors.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreBackend: strings.ToLower(envOrDefault("STORE_BACKEND", BackendGitHub)),

		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:  envOrDefault("GITHUB_OWNER", "GarvishDua"),
		GitHubRepo:   envOrDefault("GITHUB_REPO", "ink-splash-stories"),
		GitHubPath:   envOrDefault("GITHUB_PATH", "public/api/blogs.json"),
		GitHubBranch: envOrDefault("GITHUB_BRANCH", "main"),
		GitHubAPIURL: envOrDefault("GITHUB_API_URL", "https://api.github.com"),
		GitHubRawURL: envOrDefault("GITHUB_RAW_URL", "https://raw.githubusercontent.com"),

		StaticFallbackPath: envOrDefault("STATIC_FALLBACK_PATH", "public/api/blogs.json"),
		ProxyURL:           os.Getenv("PROXY_URL"),

		DefaultCategory:  envOrDefault("DEFAULT_CATEGORY", "anime"),
		N8NWebhookSecret: os.Getenv("N8N_WEBHOOK_SECRET"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inksplash"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "inksplash"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Key:       envOrDefault("S3_KEY", "blogs.json"),
	}

	var err error
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteRetries, err = envInt("WRITE_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.ViewRateLimit, err = envInt("VIEW_RATE_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.SerializeWrites, err = envBool("SERIALIZE_WRITES", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints. It does not require the store
// credential: reads work without it and writes report it per request.
func (c *Config) Validate() error {
	var errs []error

	known := false
	for _, b := range Backends {
		if c.StoreBackend == b {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of %s", c.StoreBackend, strings.Join(Backends, ", ")))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.WriteRetries < 0 {
		errs = append(errs, errors.New("WRITE_RETRIES must not be negative"))
	}
	if c.ViewRateLimit <= 0 {
		errs = append(errs, errors.New("VIEW_RATE_LIMIT must be positive"))
	}

	switch c.StoreBackend {
	case BackendGitHub:
		if c.GitHubOwner == "" || c.GitHubRepo == "" || c.GitHubPath == "" {
			errs = append(errs, errors.New("GITHUB_OWNER, GITHUB_REPO and GITHUB_PATH are required for the github backend"))
		}
	case BackendFile:
		if c.StaticFallbackPath == "" {
			errs = append(errs, errors.New("STATIC_FALLBACK_PATH is required for the file backend"))
		}
	case BackendPostgres:
		if c.Env == "production" && c.DBPassword == "changeme" {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether the view guard has a server to talk to.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// StorePath is the document location shared by the postgres backend and
// log lines.
func (c *Config) StorePath() string {
	return c.GitHubPath
}

// Presence reports which optional settings are configured. Values are
// never included.
func (c *Config) Presence() map[string]bool {
	return map[string]bool{
		"GITHUB_TOKEN":       c.GitHubToken != "",
		"N8N_WEBHOOK_SECRET": c.N8NWebhookSecret != "",
		"PROXY_URL":          c.ProxyURL != "",
		"VALKEY_HOST":        c.ValkeyHost != "",
		"S3_ACCESS_KEY":      c.S3AccessKey != "",
		"S3_SECRET_KEY":      c.S3SecretKey != "",
		"POSTGRES_PASSWORD":  c.DBPassword != "" && c.DBPassword != "changeme",
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// envDuration accepts Go durations ("10s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
