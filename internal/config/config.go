// Package config reads service configuration from the environment. A
// .env file in the working directory is honored when present.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/csplay/lobby/internal/authclient"
)

type Lobby struct {
	Addr string
	// AuthBaseURL may legitimately be empty here: a missing base URL is a
	// call-time configuration error in the auth client, not a boot error.
	AuthBaseURL    string
	CredentialMode authclient.CredentialMode
	AuthTimeout    time.Duration
	SessionFile    string
}

func LoadLobby() Lobby {
	_ = godotenv.Load()

	mode := authclient.ModeBearer
	if os.Getenv("AUTH_CREDENTIAL_MODE") == "cookie" {
		mode = authclient.ModeCookie
	}

	return Lobby{
		Addr:           envOr("LOBBY_ADDR", ":8080"),
		AuthBaseURL:    os.Getenv("AUTH_BASE_URL"),
		CredentialMode: mode,
		AuthTimeout:    durationOr("AUTH_TIMEOUT", 10*time.Second),
		SessionFile:    envOr("SESSION_FILE", defaultSessionFile()),
	}
}

type AuthSvc struct {
	Addr        string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	Issuer      string
}

func LoadAuthSvc() AuthSvc {
	_ = godotenv.Load()

	return AuthSvc{
		Addr:        envOr("AUTHSVC_ADDR", ":9090"),
		DatabaseDSN: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    durationOr("TOKEN_TTL", 24*time.Hour),
		Issuer:      envOr("JWT_ISSUER", "csplay"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "csplay", "session.json")
}
