// Package config loads application configuration from the environment into an
// explicit Config struct. Business logic never reads environment variables
// directly; everything is injected through constructors in cmd/server.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `envconfig:"PORT" default:"8080"`
	CookieDomain string `envconfig:"COOKIE_DOMAIN" default:""`
	// CookieSecure disables the Secure cookie attribute for local development.
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"true"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	Name     string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	// RunMigrations enables GORM AutoMigrate on startup.
	RunMigrations bool `envconfig:"RUN_MIGRATIONS" default:"false"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds Redis connection settings. Redis is optional: when Host is
// empty the application runs without the channel-stats cache.
type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:""`
	Port     string        `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	StatsTTL time.Duration `envconfig:"REDIS_STATS_TTL" default:"1m"`
}

// TokenConfig holds the signing secret and lifetime for one token class.
// Access and refresh tokens use distinct instances so that compromise of one
// secret cannot forge tokens of the other class.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthConfig holds the two token configurations.
type AuthConfig struct {
	AccessSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
}

// Access returns the access-token configuration pair.
func (c AuthConfig) Access() TokenConfig {
	return TokenConfig{Secret: c.AccessSecret, TTL: c.AccessTTL}
}

// Refresh returns the refresh-token configuration pair.
func (c AuthConfig) Refresh() TokenConfig {
	return TokenConfig{Secret: c.RefreshSecret, TTL: c.RefreshTTL}
}

// MediaConfig holds S3-compatible object storage settings for the media relay.
type MediaConfig struct {
	Endpoint        string `envconfig:"MEDIA_S3_ENDPOINT" required:"true"`
	Region          string `envconfig:"MEDIA_S3_REGION" default:"auto"`
	Bucket          string `envconfig:"MEDIA_S3_BUCKET" required:"true"`
	AccessKeyID     string `envconfig:"MEDIA_S3_ACCESS_KEY" required:"true"`
	SecretAccessKey string `envconfig:"MEDIA_S3_SECRET_KEY" required:"true"`
}

// Config is the top-level application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Media  MediaConfig
}

// Load populates Config from environment variables and validates required keys.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
