package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validPasetoKey() string {
	return strings.Repeat("k", 32)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", validPasetoKey())

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, "dev", cfg.Server.Env)
	require.True(t, cfg.Server.IsDevelopment())
	require.Empty(t, cfg.Server.TrustedOrigins)

	require.Equal(t, TokenBackendPaseto, cfg.Auth.TokenBackend)
	require.Equal(t, 10*time.Hour, cfg.Auth.TokenDuration)

	require.False(t, cfg.Email.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PASETO_KEY", validPasetoKey())
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_DURATION", "45m")
	t.Setenv("TRUSTED_ORIGINS", "https://app.test.com, https://admin.test.com")
	t.Setenv("SMTP_HOST", "smtp.test.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.False(t, cfg.Server.IsDevelopment())
	require.Equal(t, 45*time.Minute, cfg.Auth.TokenDuration)
	require.Equal(t, []string{"https://app.test.com", "https://admin.test.com"}, cfg.Server.TrustedOrigins)
	require.True(t, cfg.Email.Enabled)
}

func TestLoad_BadDurationFallsBackToDefault(t *testing.T) {
	t.Setenv("PASETO_KEY", validPasetoKey())
	t.Setenv("TOKEN_DURATION", "ten hours")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Hour, cfg.Auth.TokenDuration)
}

func TestLoad_PasetoKeyMustBe32Bytes(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PASETO_KEY")
}

func TestLoad_JWTBackendNeedsSecret(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", TokenBackendJWT)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "top-secret")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, TokenBackendJWT, cfg.Auth.TokenBackend)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", "sessions-on-paper")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.test.com",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		DBName:   "taskmanager",
		SSLMode:  "require",
	}
	require.Equal(t,
		"host=db.test.com port=5432 user=app password=pw dbname=taskmanager sslmode=require",
		c.ConnectionString(),
	)
}

func TestRedisAddress(t *testing.T) {
	c := RedisConfig{Host: "cache.test.com", Port: "6379"}
	require.Equal(t, "cache.test.com:6379", c.Address())
}
