// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Greeting backends.
const (
	BackendStatic    = "static"
	BackendAnthropic = "anthropic"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Greeting  GreetingConfig
	Wish      WishConfig
	Wizard    WizardConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// PublicURL is the base of shareable wish links, e.g. https://wishes.example.
	PublicURL string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk locations. Everything derives from BasePath.
type StorageConfig struct {
	BasePath     string
	DatabasePath string // {base}/wishcraft.db
	DraftsPath   string // {base}/drafts
	PhotosDir    string // subdirectory of BasePath holding photos
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s, SSE streams refresh it)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// GreetingConfig selects and tunes the greeting generator.
type GreetingConfig struct {
	Backend         string
	AnthropicAPIKey string
	AnthropicModel  string
	Timeout         time.Duration // default: 20s
	// RequestsPerSecond throttles outbound model calls.
	RequestsPerSecond float64
}

// WishConfig holds wish persistence settings.
type WishConfig struct {
	FetchTimeout   time.Duration // default: 5s
	PersistTimeout time.Duration // default: 15s
	MaxPhotoBytes  int           // default: 10 MiB
}

// WizardConfig holds wizard session settings.
type WizardConfig struct {
	SessionTTL time.Duration // default: 24h
}

// RateLimitConfig limits API requests per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// LoadConfig loads configuration from os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("wishcraft", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	publicURL := fs.String("public-url", "", "Public base URL of wish links")
	dataPath := fs.String("data", "", "Base path for the database, drafts and photos")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	greetingBackend := fs.String("greeting-backend", "", "Greeting generator: static or anthropic (default: static)")
	greetingTimeout := fs.String("greeting-timeout", "", "Greeting generation timeout (default: 20s)")
	sessionTTL := fs.String("session-ttl", "", "Wizard draft lifetime (default: 24h)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine. Values it holds never override the real
	// environment.
	dotenv, err := godotenv.Read(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read env file %s: %w", *envFile, err)
	}
	src := source{dotenv: dotenv}

	cfg := &Config{
		App: AppConfig{
			Environment: src.get(*env, "ENV", "development"),
			PublicURL:   strings.TrimRight(src.get(*publicURL, "PUBLIC_URL", ""), "/"),
		},
		Logger: LoggerConfig{
			Level: src.get(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			BasePath:  src.get(*dataPath, "WISHCRAFT_DATA", ""),
			PhotosDir: "photos",
		},
		Server: ServerConfig{
			Port: src.get(*serverPort, "SERVER_PORT", "8080"),
		},
		Greeting: GreetingConfig{
			Backend:         strings.ToLower(src.get(*greetingBackend, "GREETING_BACKEND", BackendStatic)),
			AnthropicAPIKey: src.get("", "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  src.get("", "ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		},
		Wish: WishConfig{},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: src.getInt("", "RATE_LIMIT_RPM", 120),
			Burst:             src.getInt("", "RATE_LIMIT_BURST", 30),
		},
	}

	cfg.Greeting.RequestsPerSecond, err = src.getFloat("", "GREETING_RPS", 2)
	if err != nil {
		return nil, err
	}
	cfg.Wish.MaxPhotoBytes = src.getInt("", "MAX_PHOTO_BYTES", 10<<20)

	durations := []struct {
		dst   *time.Duration
		flag  string
		key   string
		deflt string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Greeting.Timeout, *greetingTimeout, "GREETING_TIMEOUT", "20s"},
		{&cfg.Wish.FetchTimeout, "", "WISH_FETCH_TIMEOUT", "5s"},
		{&cfg.Wish.PersistTimeout, "", "WISH_PERSIST_TIMEOUT", "15s"},
		{&cfg.Wizard.SessionTTL, *sessionTTL, "WIZARD_SESSION_TTL", "24h"},
	}
	for _, d := range durations {
		raw := src.get(d.flag, d.key, d.deflt)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	switch c.Greeting.Backend {
	case BackendStatic:
	case BackendAnthropic:
		if c.Greeting.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required when GREETING_BACKEND=anthropic")
		}
	default:
		return fmt.Errorf("invalid greeting backend: %s (must be static or anthropic)", c.Greeting.Backend)
	}

	timeouts := map[string]time.Duration{
		"GREETING_TIMEOUT":     c.Greeting.Timeout,
		"WISH_FETCH_TIMEOUT":   c.Wish.FetchTimeout,
		"WISH_PERSIST_TIMEOUT": c.Wish.PersistTimeout,
		"WIZARD_SESSION_TTL":   c.Wizard.SessionTTL,
	}
	for key, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}

	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit RPM and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths resolves the base path and derives the database and
// draft locations from it.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Wishcraft", "data")

	expanded, err := expandPath(c.Storage.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.BasePath = expanded
	c.Storage.DatabasePath = filepath.Join(expanded, "wishcraft.db")
	c.Storage.DraftsPath = filepath.Join(expanded, "drafts")
	return nil
}

// source resolves a value from a flag, the environment, the .env file, or a default.
type source struct {
	dotenv map[string]string
}

// get returns the first non-empty value from flag, env var, .env file, or default.
func (s source) get(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	if fileValue := s.dotenv[envKey]; fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getInt returns an int from the sources, or the default when unset or malformed.
func (s source) getInt(flagValue, envKey string, defaultValue int) int {
	raw := s.get(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func (s source) getFloat(flagValue, envKey string, defaultValue float64) (float64, error) {
	raw := s.get(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return f, nil
}
