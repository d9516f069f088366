package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Gemini    GeminiConfig
	Generator GeneratorConfig
	Archive   ArchiveConfig
	Session   SessionConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// DatabaseConfig holds database configuration. An empty driver keeps
// sessions in memory.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"memory"`
	DSN    string `env:"DB_DSN" envDefault:"data/cicd-wizard.db"`
}

// GeminiConfig holds generation service configuration. The API key is
// checked when a request is made, not at startup.
type GeminiConfig struct {
	APIKey      string        `env:"GEMINI_API_KEY"`
	Model       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	MaxAttempts int           `env:"GEMINI_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay  time.Duration `env:"GEMINI_RETRY_DELAY" envDefault:"300ms"`
	Timeout     time.Duration `env:"GEMINI_TIMEOUT" envDefault:"2m"` // Bounds each Gemini call, retries included
}

// GeneratorConfig selects the generator backend.
type GeneratorConfig struct {
	FileShim string `env:"GENERATOR_FILE_SHIM"` // Path to a YAML fixture (disables the real API)
}

// ArchiveConfig holds archive caching and optional S3 export settings.
type ArchiveConfig struct {
	CacheSize   int    `env:"ARCHIVE_CACHE_SIZE" envDefault:"128"`
	S3Endpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	S3Region    string `env:"ARCHIVE_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"ARCHIVE_S3_ACCESS_KEY"`
	S3SecretKey string `env:"ARCHIVE_S3_SECRET_KEY"`
	S3Bucket    string `env:"ARCHIVE_S3_BUCKET" envDefault:"cicd-templates"`
	S3UseSSL    bool   `env:"ARCHIVE_S3_USE_SSL" envDefault:"true"`
}

// SessionConfig controls session lifetime.
type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	PurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"10m"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load loads configuration from environment variables. Values from the
// given .env files (default ".env") are applied first without overriding
// variables already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Gemini); err != nil {
		return nil, fmt.Errorf("parsing gemini config: %w", err)
	}
	if err := env.Parse(&cfg.Generator); err != nil {
		return nil, fmt.Errorf("parsing generator config: %w", err)
	}
	if err := env.Parse(&cfg.Archive); err != nil {
		return nil, fmt.Errorf("parsing archive config: %w", err)
	}
	if err := env.Parse(&cfg.Session); err != nil {
		return nil, fmt.Errorf("parsing session config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UseMemory reports whether sessions are kept in memory.
func (c *DatabaseConfig) UseMemory() bool {
	return c.Driver == "" || c.Driver == "memory"
}

// ExportEnabled reports whether archives can be uploaded to S3.
func (c *ArchiveConfig) ExportEnabled() bool {
	return strings.TrimSpace(c.S3Endpoint) != ""
}

// Validate checks if the configuration is valid. A missing Gemini key is
// not an error here.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "", "memory":
	case "sqlite3", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required when DB_DRIVER is %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("DB_DRIVER must be memory, sqlite3 or postgres, got %q", c.Database.Driver)
	}

	if c.Gemini.MaxAttempts < 1 {
		return fmt.Errorf("GEMINI_MAX_ATTEMPTS must be at least 1")
	}
	if c.Gemini.Model == "" && c.Generator.FileShim == "" {
		return fmt.Errorf("GEMINI_MODEL is required (or set GENERATOR_FILE_SHIM for testing)")
	}

	if c.Archive.ExportEnabled() {
		if c.Archive.S3AccessKey == "" || c.Archive.S3SecretKey == "" {
			return fmt.Errorf("ARCHIVE_S3_ACCESS_KEY and ARCHIVE_S3_SECRET_KEY are required when ARCHIVE_S3_ENDPOINT is set")
		}
		if c.Archive.S3Bucket == "" {
			return fmt.Errorf("ARCHIVE_S3_BUCKET is required when ARCHIVE_S3_ENDPOINT is set")
		}
	}

	if c.Session.TTL < 0 || c.Session.PurgeInterval < 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_PURGE_INTERVAL must not be negative")
	}

	return nil
}

// UseFileShim returns true if the file shim should be used instead of the real API.
func (c *Config) UseFileShim() bool {
	return c.Generator.FileShim != ""
}
