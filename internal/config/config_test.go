package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "anonymous", cfg.AuthMode)
	assert.Equal(t, "multiple", cfg.AttemptPolicy)
	assert.True(t, cfg.EnableLocalAuth)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AUTH_MODE", "token")
	t.Setenv("ATTEMPT_POLICY", "single")
	t.Setenv("ENABLE_LOCAL_AUTH", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "token", cfg.AuthMode)
	assert.Equal(t, "single", cfg.AttemptPolicy)
	assert.False(t, cfg.EnableLocalAuth)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "garbage")
	assert.True(t, envBool("FLAG", true))
	assert.False(t, envBool("FLAG", false))

	t.Setenv("FLAG", "yes")
	assert.True(t, envBool("FLAG", false))
	t.Setenv("FLAG", "0")
	assert.False(t, envBool("FLAG", true))
}
