package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "3030", cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "pacific_clothing", cfg.MongoDB.Database)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	require.Equal(t, 10.0, cfg.RateLimit.RPS)
	require.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "testdb")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KEYCLOAK_URL", "http://keycloak:8080")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9999", cfg.Server.Port)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "testdb", cfg.MongoDB.Database)
	require.Equal(t, "s3cret", cfg.JWT.Secret)
	require.Equal(t, "http://keycloak:8080", cfg.Keycloak.URL)
	require.True(t, cfg.RateLimit.Enabled)
}
