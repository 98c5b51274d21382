package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TICKETBOOTH_API_KEY", "")
	t.Setenv("TOKENS_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TICKETBOOTH_ENVIRONMENT", "production")
	t.Setenv("TICKETBOOTH_PORT", "9090")
	t.Setenv("TICKETBOOTH_LOG_LEVEL", "debug")
	t.Setenv("TICKETBOOTH_STORAGE_DRIVER", "Memory")
	t.Setenv("TICKETBOOTH_API_KEY", "secret")
	t.Setenv("TICKETBOOTH_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_LegacyAPIKeyVariable(t *testing.T) {
	t.Setenv("TICKETBOOTH_API_KEY", "")
	t.Setenv("TOKENS_API_KEY", "legacy-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", cfg.APIKey)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("TICKETBOOTH_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownStorageDriver(t *testing.T) {
	t.Setenv("TICKETBOOTH_STORAGE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
