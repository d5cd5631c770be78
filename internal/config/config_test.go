package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "gcs")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("SIGNED_URL_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "gcs", cfg.StorageDriver)
	assert.True(t, cfg.StorageUseSSL)
	assert.Equal(t, 15*time.Minute, cfg.SignedURLTTL)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("SIGNED_URL_TTL", "0s")
	_, err := Load()
	require.Error(t, err)
}
