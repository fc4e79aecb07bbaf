package config

import (
	"log/slog"
	"os"
)

var JwtKey []byte

// LoadJwtKey reads the token signing secret. The service refuses to start
// without it; a generated fallback would silently invalidate sessions on
// every restart.
func LoadJwtKey() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}
