package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from an optional app.env file or environment variables.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	Environment string `mapstructure:"APP_ENV"`

	// Database
	DBDriver    string `mapstructure:"DB_DRIVER"` // "sqlite" or "postgres"
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Tokens
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	AccessTokenExpiresMin int    `mapstructure:"ACCESS_TOKEN_EXPIRES_MIN"`

	// Seed admin, created on startup when missing
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	// RabbitMQ order events; empty URL disables publishing
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`
	RabbitMQQueue    string `mapstructure:"RABBITMQ_QUEUE"`

	// OTLP gRPC collector endpoint; empty disables tracing
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
}

// TokenTTL returns the access token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiresMin) * time.Minute
}

// Validate rejects configurations the application cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.AccessTokenExpiresMin <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRES_MIN must be positive, got %d", c.AccessTokenExpiresMin))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from path/app.env (if present) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SERVICE_NAME", "order-api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "file:orders.db?cache=shared")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ACCESS_TOKEN_EXPIRES_MIN", 120)
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("RABBITMQ_QUEUE", "order_events")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	var cfg Config
	if err := v.ReadInConfig(); err == nil {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Using config file")
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug().Msg("No config file found, using environment variables and defaults")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
