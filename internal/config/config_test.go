package config

import (
	"testing"
	"time"

	"chdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DASHBOARD_PASSPHRASE", "secret")
	t.Setenv("DATA_SOURCE_URL", "")
	t.Setenv("DATA_CACHE_TTL", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultSourceURL, cfg.Data.SourceURL)
	assert.Equal(t, time.Duration(0), cfg.Data.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Data.FetchTimeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DASHBOARD_PASSPHRASE", "secret")
	t.Setenv("DATA_SOURCE_URL", "/tmp/framingham.csv")
	t.Setenv("DATA_CACHE_TTL", "15m")
	t.Setenv("ADMIN_ENABLED", "true")
	t.Setenv("ADMIN_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/chd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/framingham.csv", cfg.Data.SourceURL)
	assert.Equal(t, 15*time.Minute, cfg.Data.CacheTTL)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "9090", cfg.Admin.Port)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoad_MissingPassphrase(t *testing.T) {
	t.Setenv("DASHBOARD_PASSPHRASE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_AdminPortClash(t *testing.T) {
	t.Setenv("DASHBOARD_PASSPHRASE", "secret")
	t.Setenv("ADMIN_ENABLED", "true")
	t.Setenv("ADMIN_PORT", "8080")
	t.Setenv("PORT", "8080")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PORT")
}
