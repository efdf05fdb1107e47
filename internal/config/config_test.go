package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_IDLE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoad_ProductionRequiresAuth0(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("AUTH0_DOMAIN", "")
	t.Setenv("AUTH0_AUDIENCE", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH0_DOMAIN", "example.auth0.com")
	_, err = Load()
	require.Error(t, err, "audience is still missing")

	t.Setenv("AUTH0_AUDIENCE", "https://api.nestfinance.app")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "example.auth0.com", cfg.Auth0Domain)
}

func TestLoad_ParsesDurationsAndOrigins(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://nestfinance.app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://nestfinance.app"}, cfg.CORSOrigins)

	t.Setenv("SESSION_IDLE_TTL", "not a duration")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL, "unparseable durations fall back to the default")
}
