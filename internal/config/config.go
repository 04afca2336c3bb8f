package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig  `mapstructure:"server"`
	MongoDB   MongoDBConfig `mapstructure:"mongodb"`
	JWT       JWTConfig     `mapstructure:"jwt"`
	Draw      DrawConfig    `mapstructure:"draw"`
	Webhook   WebhookConfig `mapstructure:"webhook"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	AllowedHosts []string      `mapstructure:"allowed_hosts"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	ExpiresIn int    `mapstructure:"expires_in"` // seconds
}

// TokenTTL is the lifetime of issued tokens
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.ExpiresIn) * time.Second
}

// DrawConfig controls draw locking and the scheduled trigger
type DrawConfig struct {
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	Schedule         string        `mapstructure:"schedule"`
	SchedulerEnabled bool          `mapstructure:"scheduler_enabled"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// WebhookConfig holds the results webhook configuration. An empty URL disables it.
type WebhookConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

// Load loads configuration from environment variables and config files.
// Files named config.yaml are searched in paths, defaulting to . and ./config.
// Environment variables override files, e.g. DRAW_LOCK_TTL for draw.lock_ttl.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var problems []string
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.MongoDB.URI == "" {
		problems = append(problems, "mongodb.uri is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		problems = append(problems, "jwt.expires_in must be positive")
	}
	if c.Draw.LockTTL <= 0 {
		problems = append(problems, "draw.lock_ttl must be positive")
	}
	if c.Draw.SchedulerEnabled && c.Draw.Schedule == "" {
		problems = append(problems, "draw.schedule is required when the scheduler is enabled")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// setDefaults registers every key so environment overrides are picked up
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.allowed_hosts", []string{"localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongodb.database", "forum-lottery")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", 24*60*60) // 24 hours
	v.SetDefault("draw.lock_ttl", 2*time.Minute)
	v.SetDefault("draw.schedule", "@every 1m")
	v.SetDefault("draw.scheduler_enabled", true)
	v.SetDefault("draw.request_timeout", 30*time.Second)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.api_key", "")
	v.SetDefault("webhook.timeout", 10*time.Second)
	v.SetDefault("webhook.queue_size", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}
