// Package config loads application settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	wbfconfig "github.com/wb-go/wbf/config"
)

const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// Config holds the main configuration for the application.
type Config struct {
	LogLevel string
	Workers  int
	Encoding Encoding
	Storage  Storage
}

// Encoding holds resampling and encoder settings.
type Encoding struct {
	Filter       string
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

// Storage holds configuration for the output backend.
type Storage struct {
	Backend  string
	Endpoint string
	User     string
	Pass     string
	Bucket   string
	Secure   bool
}

// Load reads settings from the process environment. Env files that exist are
// loaded first; missing ones are ignored.
func Load(envFiles ...string) (*Config, error) {
	appConfig := wbfconfig.New()
	appConfig.EnableEnv("")

	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := appConfig.LoadEnvFiles(f); err != nil {
			return nil, fmt.Errorf("failed to load env file %q: %w", f, err)
		}
	}

	get := func(key, def string) string {
		if v := strings.TrimSpace(appConfig.GetString(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	atoi := func(key, def string) int {
		n, err := strconv.Atoi(get(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	parseBool := func(key string) bool {
		b, err := strconv.ParseBool(get(key, "false"))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return b
	}

	cfg := &Config{
		LogLevel: get("LOG_LEVEL", "info"),
		Workers:  atoi("IMG_WORKERS", "1"),
		Encoding: Encoding{
			Filter:       get("RESAMPLE_FILTER", "lanczos"),
			JPEGQuality:  atoi("JPEG_QUALITY", "95"),
			WebPQuality:  float32(atoi("WEBP_QUALITY", "90")),
			WebPLossless: parseBool("WEBP_LOSSLESS"),
		},
		Storage: Storage{
			Backend:  strings.ToLower(get("OUTPUT_BACKEND", BackendLocal)),
			Endpoint: get("MINIO_ENDPOINT", ""),
			User:     get("MINIO_USER", ""),
			Pass:     get("MINIO_PASS", ""),
			Bucket:   get("BUCKET_NAME", "default"),
			Secure:   parseBool("MINIO_SECURE"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("IMG_WORKERS must be at least 1, got %d", c.Workers)
	case c.Encoding.JPEGQuality < 1 || c.Encoding.JPEGQuality > 100:
		return fmt.Errorf("JPEG_QUALITY must be within 1..100, got %d", c.Encoding.JPEGQuality)
	case c.Encoding.WebPQuality < 0 || c.Encoding.WebPQuality > 100:
		return fmt.Errorf("WEBP_QUALITY must be within 0..100, got %v", c.Encoding.WebPQuality)
	}

	switch c.Storage.Backend {
	case BackendLocal:
	case BackendMinio:
		if c.Storage.Endpoint == "" {
			return errors.New("MINIO_ENDPOINT is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown OUTPUT_BACKEND %q", c.Storage.Backend)
	}

	return nil
}
