// Package config provides configuration loading for the text extractor.
// Supports YAML files, .env files, and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// placeholderKey is the value shipped in sample environments; it counts as unset.
const placeholderKey = "YOUR_API_KEY"

// Config holds all configuration for the text extractor.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	LLM           LLMConfig           `yaml:"llm"`
	Raster        RasterConfig        `yaml:"raster"`
	Cache         CacheConfig         `yaml:"cache"`
	Locale        string              `yaml:"locale"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// LLMConfig holds content-generation provider settings.
type LLMConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Configured reports whether a usable API key is present.
func (c LLMConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != placeholderKey
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	Scale       float64 `yaml:"scale"`
	JPEGQuality int     `yaml:"jpeg_quality"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig holds settings for caching extraction responses.
type CacheConfig struct {
	Backend       string        `yaml:"backend"` // none, memory or redis
	TTL           time.Duration `yaml:"ttl"`
	MaxEntries    int           `yaml:"max_entries"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from an optional YAML file, then .env, then the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: 3 * time.Minute,
		},
		Raster: RasterConfig{
			Scale:       1.5,
			JPEGQuality: 85,
		},
		Cache: CacheConfig{
			Backend:    CacheNone,
			TTL:        24 * time.Hour,
			MaxEntries: 500,
			RedisAddr:  "localhost:6379",
		},
		Locale: "fa",
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "text-extractor",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.Raster.Scale <= 0 || c.Raster.Scale > 8 {
		return fmt.Errorf("raster scale must be in (0, 8], got %v", c.Raster.Scale)
	}

	if c.Raster.JPEGQuality < 1 || c.Raster.JPEGQuality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Raster.JPEGQuality)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm model must not be empty")
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheMemory, CacheRedis:
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive")
		}
		if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache redis_addr must not be empty")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}

	if c.Observability.LogFormat != "json" && c.Observability.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %s", c.Observability.LogFormat)
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("LOCALE"); v != "" {
		cfg.Locale = v
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("RASTER_SCALE"); v != "" {
		if scale, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Raster.Scale = scale
		}
	}

	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = ttl
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisAddr = v
	}

	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
