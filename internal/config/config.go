package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Client side.
	APIBaseURL    string
	SessionDBPath string
	HTTPTimeout   time.Duration

	// Stub backend.
	StubAddr   string
	StubDBDSN  string
	JWTSecret  string
	TokenTTL   time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is folded in first when present.
func Load() Config {
	_ = godotenv.Load()

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	// The original UI never aborts a slow exchange, so the default is no
	// timeout at all. Set HTTP_TIMEOUT_SECONDS to cap request time.
	timeoutSec := 0
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			timeoutSec = n
		}
	}

	stubAddr := os.Getenv("STUB_ADDR")
	if stubAddr == "" {
		stubAddr = ":8000"
	}

	stubDSN := os.Getenv("STUB_DB")
	if stubDSN == "" {
		stubDSN = "file:stub.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	ttlMin := 30
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			ttlMin = n
		}
	}

	return Config{
		APIBaseURL:    baseURL,
		SessionDBPath: os.Getenv("SESSION_DB"),
		HTTPTimeout:   time.Duration(timeoutSec) * time.Second,

		StubAddr:  stubAddr,
		StubDBDSN: stubDSN,
		JWTSecret: secret,
		TokenTTL:  time.Duration(ttlMin) * time.Minute,
	}
}
