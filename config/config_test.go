package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "foodbridge", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadConfigSessionTTL(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SESSION_TTL", "2h30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, cfg.SessionTTL)
}

func TestLoadConfigBadSessionTTL(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SESSION_TTL", "tomorrow")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSecretsOverrideEnv(t *testing.T) {
	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "db_password"), []byte("from-secret\n"), 0o600))

	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", secretsDir)
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.DBPassword)
}

func TestValidateConfigProduction(t *testing.T) {
	cfg := &Config{
		ServerPort: "8080",
		DBHost:     "localhost",
		DBName:     "foodbridge",
	}

	require.NoError(t, ValidateConfig(cfg, Development))

	err := ValidateConfig(cfg, Production)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_EMAIL")

	cfg.JWTSecret = "secret"
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "admin123"
	err = ValidateConfig(cfg, Production)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default value")

	cfg.AdminPassword = "something-else"
	assert.NoError(t, ValidateConfig(cfg, Production))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
