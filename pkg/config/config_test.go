package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.Auth.RequireApproval)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "@every 1h", cfg.Exports.CleanupSchedule)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("API_PREFIX", "v2/")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("REQUIRE_APPROVAL", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.False(t, cfg.Auth.RequireApproval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
}
