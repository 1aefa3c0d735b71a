package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// AuthMode selects identity resolution for exam takers:
	// "anonymous" (name/email in the start request) or "token" (JWT subject).
	AuthMode string
	// AttemptPolicy is "multiple" or "single" attempts per student+exam.
	AttemptPolicy string

	AuthHMACSecret  string
	EnableLocalAuth bool

	CORSOrigins []string
}

// FromEnv loads .env if present, then reads the environment.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		AuthMode:        envOr("AUTH_MODE", "anonymous"),
		AttemptPolicy:   envOr("ATTEMPT_POLICY", "multiple"),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "examgate-dev-secret"),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
