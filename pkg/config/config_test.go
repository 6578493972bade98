package config_test

import (
	"testing"
	"time"

	"github.com/smartstorage/smartstorage-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("server")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, 8*time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, "http://localhost:8000", cfg.AI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Zero(t, cfg.Seed.RobotCount)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SMARTSTORAGE_SERVER_PORT", "9090")
	t.Setenv("SMARTSTORAGE_SEED_ROBOT_COUNT", "3")

	cfg, err := config.Load("server")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Seed.RobotCount)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "smartstorage",
		Password: "secret",
		Database: "smartstorage",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestLoadWithValidation_ProductionRejectsDevSecrets(t *testing.T) {
	t.Setenv("SMARTSTORAGE_SERVER_ENVIRONMENT", "production")

	_, err := config.LoadWithValidation("server")
	require.Error(t, err)
}
