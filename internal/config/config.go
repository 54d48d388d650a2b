package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rcaccelerator/server/pkg/models"
)

// Config holds all configuration for the RCAccelerator server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	Report   ReportConfig
	Defaults DefaultsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// EngineConfig points at the RCA generation engine.
type EngineConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	CatalogTTL time.Duration
}

// ReportConfig controls Tempest report fetching. AuthToken is optional;
// when empty, reports are fetched anonymously.
type ReportConfig struct {
	FetchTimeout time.Duration
	AuthToken    string
}

// DefaultsConfig supplies request-level defaults applied when a client
// omits a setting.
type DefaultsConfig struct {
	SimilarityThreshold float64
	Temperature         float64
	MaxTokens           int
	EnableRerank        bool
	Profile             string
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("RCA_PORT", 8080),
			Env:  envString("RCA_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Engine: EngineConfig{
			BaseURL:    os.Getenv("ENGINE_BASE_URL"),
			Token:      os.Getenv("ENGINE_TOKEN"),
			Timeout:    envDuration("ENGINE_TIMEOUT", 120*time.Second),
			CatalogTTL: envDuration("ENGINE_CATALOG_TTL", 5*time.Minute),
		},
		Report: ReportConfig{
			FetchTimeout: envDuration("REPORT_FETCH_TIMEOUT", 60*time.Second),
			AuthToken:    os.Getenv("REPORT_AUTH_TOKEN"),
		},
		Defaults: DefaultsConfig{
			SimilarityThreshold: envFloat("DEFAULT_SIMILARITY_THRESHOLD", 0.6),
			Temperature:         envFloat("DEFAULT_TEMPERATURE", 0.3),
			MaxTokens:           envInt("DEFAULT_MAX_TOKENS", 512),
			EnableRerank:        envBool("ENABLE_RERANK", true),
			Profile:             envString("DEFAULT_PROFILE", models.ProfileCILogs),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Engine.BaseURL == "" {
		return fmt.Errorf("ENGINE_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Engine.BaseURL, "http://") && !strings.HasPrefix(c.Engine.BaseURL, "https://") {
		return fmt.Errorf("ENGINE_BASE_URL must start with http:// or https://, got %q", c.Engine.BaseURL)
	}

	if c.Defaults.SimilarityThreshold < -1.0 || c.Defaults.SimilarityThreshold > 1.0 {
		return fmt.Errorf("DEFAULT_SIMILARITY_THRESHOLD must be between -1 and 1, got %v", c.Defaults.SimilarityThreshold)
	}
	if c.Defaults.Temperature < 0.0 || c.Defaults.Temperature > 1.0 {
		return fmt.Errorf("DEFAULT_TEMPERATURE must be between 0 and 1, got %v", c.Defaults.Temperature)
	}
	if c.Defaults.MaxTokens <= 1 || c.Defaults.MaxTokens > 1024 {
		return fmt.Errorf("DEFAULT_MAX_TOKENS must be between 2 and 1024, got %d", c.Defaults.MaxTokens)
	}
	if !models.ValidProfile(c.Defaults.Profile) {
		return fmt.Errorf("DEFAULT_PROFILE must be one of %v, got %q", models.Profiles(), c.Defaults.Profile)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
