package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrDatabasePathMissing is returned when no database path is configured.
// The server cannot start without durable storage for user data.
var ErrDatabasePathMissing = errors.New("database path is not configured")

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Embed    EmbedConfig    `mapstructure:"embed"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration. DefaultEmail and
// DefaultPassword seed a first account on an empty database; both must
// be set for the seed to happen.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	DefaultEmail    string `mapstructure:"default_email"`
	DefaultPassword string `mapstructure:"default_password"`
}

// CatalogConfig holds settings for the external metadata catalog.
// A missing token is deliberately not fatal at startup: catalog calls
// fail at request time and the client surfaces an API error screen.
type CatalogConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	BearerToken  string `mapstructure:"bearer_token"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

// EmbedConfig holds settings for the external video embed provider.
type EmbedConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.jstream")
	}

	v.SetEnvPrefix("JSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.Path == "" {
		return nil, ErrDatabasePathMissing
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/jstream.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.default_email", "")
	v.SetDefault("auth.default_password", "")

	v.SetDefault("catalog.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("catalog.bearer_token", "")
	v.SetDefault("catalog.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("catalog.timeout", 15)

	v.SetDefault("embed.base_url", "https://vidsrc.cc/v2/embed")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
