// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g.
// SPENDWISE_DATABASE_PATH for database.path.
const EnvPrefix = "SPENDWISE"

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	User     UserConfig     `mapstructure:"user" yaml:"user"`
	Import   ImportConfig   `mapstructure:"import" yaml:"import"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Seed     SeedConfig     `mapstructure:"seed" yaml:"seed"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// UserConfig names the user that CLI commands and unauthenticated API
// requests act as.
type UserConfig struct {
	DefaultID string `mapstructure:"default_id" yaml:"default_id"`
}

type ImportConfig struct {
	DefaultDirection        string  `mapstructure:"default_direction" yaml:"default_direction"`
	TypeColumnAuthoritative bool    `mapstructure:"type_column_authoritative" yaml:"type_column_authoritative"`
	ApplyRules              bool    `mapstructure:"apply_rules" yaml:"apply_rules"`
	SkipDuplicates          bool    `mapstructure:"skip_duplicates" yaml:"skip_duplicates"`
	DuplicateSimilarity     float64 `mapstructure:"duplicate_similarity" yaml:"duplicate_similarity"`
	Delimiter               string  `mapstructure:"delimiter" yaml:"delimiter"`
}

type ServerConfig struct {
	Address             string          `mapstructure:"address" yaml:"address"`
	ReadTimeoutSeconds  int             `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int             `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	MaxBodyBytes        int64           `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	AllowedOrigins      []string        `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimit           RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Burst             int  `mapstructure:"burst" yaml:"burst"`
}

type SeedConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// InitializeConfig loads configuration from defaults, an optional config
// file and SPENDWISE_* environment variables, in increasing precedence.
// When configFile is empty the standard locations are searched and a
// missing file is not an error.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.spendwise")
		v.AddConfigPath(".spendwise")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "data/spendwise.db")

	v.SetDefault("user.default_id", "default-user")

	v.SetDefault("import.default_direction", string(models.Debit))
	v.SetDefault("import.type_column_authoritative", false)
	v.SetDefault("import.apply_rules", true)
	v.SetDefault("import.skip_duplicates", false)
	v.SetDefault("import.duplicate_similarity", 0.9)
	v.SetDefault("import.delimiter", ",")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_minute", 100)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("seed.file", "seed.yaml")
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.Log.Format)
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}

	if strings.TrimSpace(c.User.DefaultID) == "" {
		return fmt.Errorf("user.default_id is required")
	}

	if _, err := models.ParseDirection(c.Import.DefaultDirection); err != nil {
		return fmt.Errorf("import.default_direction: %w", err)
	}

	if c.Import.DuplicateSimilarity <= 0 || c.Import.DuplicateSimilarity > 1 {
		return fmt.Errorf("import.duplicate_similarity must be in (0, 1], got: %f", c.Import.DuplicateSimilarity)
	}

	if len([]rune(c.Import.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", c.Import.Delimiter)
	}

	if c.Server.ReadTimeoutSeconds < 1 || c.Server.WriteTimeoutSeconds < 1 {
		return fmt.Errorf("server timeouts must be at least one second")
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerMinute < 1 || c.Server.RateLimit.RequestsPerMinute > 100000 {
			return fmt.Errorf("server.rate_limit.requests_per_minute must be between 1 and 100000, got: %d", c.Server.RateLimit.RequestsPerMinute)
		}
		if c.Server.RateLimit.Burst < 1 {
			return fmt.Errorf("server.rate_limit.burst must be at least 1, got: %d", c.Server.RateLimit.Burst)
		}
	}

	return nil
}

// ImportDirection returns the parsed import.default_direction. The value is
// checked by Validate, so it falls back to DEBIT only on unvalidated input.
func (c *Config) ImportDirection() models.Direction {
	d, err := models.ParseDirection(c.Import.DefaultDirection)
	if err != nil {
		return models.Debit
	}
	return d
}

// ImportDelimiter returns the CSV delimiter as a rune.
func (c *Config) ImportDelimiter() rune {
	for _, r := range c.Import.Delimiter {
		return r
	}
	return ','
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// NewLogger builds the application logger from the log section.
func NewLogger(c *Config) logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
