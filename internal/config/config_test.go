package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL_HOURS", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
	assert.Equal(t, 24, cfg.JWTTTLHours)
}

func TestLoadSQLiteAndOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_TTL_HOURS", "abc")

	cfg := Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "file:shop.db?_foreign_keys=on", cfg.DatabaseURL)
	assert.Equal(t, 24, cfg.JWTTTLHours, "invalid ttl falls back to default")
}
