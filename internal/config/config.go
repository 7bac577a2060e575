package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultPublicDir       = "public"
	defaultSiteTitle       = "ARC International Seva"
	defaultFetchTimeout    = 5 * time.Second
	defaultLogLevel        = "info"
	defaultRatePerSecond   = 5.0
	defaultRateBurst       = 10
)

var defaultDataPaths = []string{
	"data/products.json",
	"./data/products.json",
	"../data/products.json",
}

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Catalog   CatalogConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// SiteConfig describes the static site being served.
type SiteConfig struct {
	PublicDir string
	Title     string
	// AssetBase, when set, is used as the asset prefix on every page instead of the
	// per-page declaration or the path heuristic.
	AssetBase *string
}

// CatalogConfig controls where the catalog file is looked up.
type CatalogConfig struct {
	Paths        []string
	BaseURL      string
	FetchTimeout time.Duration
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string
}

// RateLimitConfig throttles the JSON catalog endpoint per client.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path skips it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process environment and
// any explicit map, in increasing order of precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "SITE_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:     durationWithDefault(lookup, "SITE_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "SITE_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "SITE_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "SITE_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Site: SiteConfig{
			PublicDir: stringWithDefault(lookup, "SITE_PUBLIC_DIR", defaultPublicDir),
			Title:     stringWithDefault(lookup, "SITE_TITLE", defaultSiteTitle),
		},
		Catalog: CatalogConfig{
			Paths:        csvWithDefault(lookup, "SITE_DATA_PATHS", defaultDataPaths),
			BaseURL:      strings.TrimSpace(stringWithDefault(lookup, "SITE_DATA_BASE_URL", "")),
			FetchTimeout: durationWithDefault(lookup, "SITE_FETCH_TIMEOUT", defaultFetchTimeout),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "SITE_LOG_LEVEL", defaultLogLevel),
		},
		RateLimit: RateLimitConfig{
			PerSecond: floatWithDefault(lookup, "SITE_RATELIMIT_PER_SEC", defaultRatePerSecond),
			Burst:     intWithDefault(lookup, "SITE_RATELIMIT_BURST", defaultRateBurst),
		},
	}
	if value, ok := lookup("SITE_ASSET_BASE"); ok {
		base := strings.TrimSpace(value)
		cfg.Site.AssetBase = &base
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var fields []string
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		fields = append(fields, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		fields = append(fields, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		fields = append(fields, "Server.WriteTimeout")
	}
	if cfg.Server.IdleTimeout <= 0 {
		fields = append(fields, "Server.IdleTimeout")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		fields = append(fields, "Server.ShutdownTimeout")
	}
	if strings.TrimSpace(cfg.Site.PublicDir) == "" {
		fields = append(fields, "Site.PublicDir")
	}
	if len(cfg.Catalog.Paths) == 0 {
		fields = append(fields, "Catalog.Paths")
	}
	if cfg.Catalog.FetchTimeout <= 0 {
		fields = append(fields, "Catalog.FetchTimeout")
	}
	if cfg.Catalog.BaseURL != "" {
		u, err := url.Parse(cfg.Catalog.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fields = append(fields, "Catalog.BaseURL")
		}
	}
	if cfg.RateLimit.PerSecond <= 0 {
		fields = append(fields, "RateLimit.PerSecond")
	}
	if cfg.RateLimit.Burst <= 0 {
		fields = append(fields, "RateLimit.Burst")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
