package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderapi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 120, cfg.AccessTokenExpiresMin)
	assert.Equal(t, 120*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Empty(t, cfg.OTelEndpoint)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRES_MIN", "15")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "host=db user=app dbname=orders sslmode=disable")
	t.Setenv("ADMIN_EMAIL", "  Root@Example.COM ")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "APP_PORT=:9090\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRES_MIN", "0")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := config.Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_EXPIRES_MIN")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
