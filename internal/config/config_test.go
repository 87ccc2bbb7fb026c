package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSessionSecret(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"

	assert.NoError(t, ValidateSessionSecret("", "development"))
	assert.NoError(t, ValidateSessionSecret("secret", "development"))
	assert.NoError(t, ValidateSessionSecret(strong, "production"))

	assert.Error(t, ValidateSessionSecret("change-me", "production"))
	assert.Error(t, ValidateSessionSecret("short", "production"))
	assert.Error(t, ValidateSessionSecret("", "production"))
}

func TestGenerateSecureSecret(t *testing.T) {
	a, err := GenerateSecureSecret()
	require.NoError(t, err)
	b, err := GenerateSecureSecret()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(a), MinSessionSecretLength)
	assert.NotEqual(t, a, b)
}

func TestLoad(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("SESSION_TTL_HOURS", "8")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("RENEWAL_WINDOW_DAYS", "45")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, uint(5432), cfg.DBPort)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.CookieSecure)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 45, cfg.RenewalWindowDays)
}

func TestLoadRejectsWeakProductionSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "short")
	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_X", "yes")
	assert.True(t, getEnvBool("FLAG_X", false))
	t.Setenv("FLAG_X", "off")
	assert.False(t, getEnvBool("FLAG_X", true))
	t.Setenv("FLAG_X", "maybe")
	assert.True(t, getEnvBool("FLAG_X", true))
}
