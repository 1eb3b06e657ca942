package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Startup data, resolved relative to DataDir.
	DataDir      string
	FacilityFile string
	ModelFile    string

	DefaultTopK int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	topK, err := parseIntEnv("DEFAULT_TOP_K", 5)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, errors.New("DEFAULT_TOP_K must be positive")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:      envOrDefault("DATA_DIR", "./data"),
		FacilityFile: envOrDefault("FACILITY_FILE", "parking_facilities.xlsx"),
		ModelFile:    envOrDefault("MODEL_FILE", "parking_ranker.json"),

		DefaultTopK: topK,

		CORSAllowedOrigins: splitCSV(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if cfg.FacilityFile == "" {
		return nil, errors.New("FACILITY_FILE is required")
	}
	if cfg.ModelFile == "" {
		return nil, errors.New("MODEL_FILE is required")
	}

	return cfg, nil
}

// FacilityPath resolves the facility workbook path under DataDir.
func (c *Config) FacilityPath() string {
	return filepath.Join(c.DataDir, c.FacilityFile)
}

// ModelPath resolves the scoring artifact path under DataDir.
func (c *Config) ModelPath() string {
	return filepath.Join(c.DataDir, c.ModelFile)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
