package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration read from the environment.
type Config struct {
	Server    ServerConfig
	Connector ConnectorConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	StaticDir       string        `envconfig:"STATIC_DIR"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"1m"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10m"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ConnectorConfig locates the file-manager configuration and overrides
// the parts of it that are deployment specific.
type ConnectorConfig struct {
	ConfigPath      string `envconfig:"FM_CONFIG" default:"public/Filemanager/scripts/filemanager.config.js"`
	Route           string `envconfig:"FM_ROUTE" default:"/fm"`
	FileRoot        string `envconfig:"FM_FILE_ROOT"`
	UploadDir       string `envconfig:"FM_UPLOAD_DIR"`
	ListConcurrency int    `envconfig:"FM_LIST_CONCURRENCY" default:"16"`
	PathLocks       bool   `envconfig:"FM_PATH_LOCKS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			Host:            "0.0.0.0",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     time.Minute,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Connector: ConnectorConfig{
			ConfigPath:      "public/Filemanager/scripts/filemanager.config.js",
			Route:           "/fm",
			ListConcurrency: 16,
			PathLocks:       true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
