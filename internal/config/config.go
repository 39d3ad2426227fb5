// Package config reads client configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration.
type Config struct {
	// APIBaseURL is the backend REST base, e.g. http://127.0.0.1:8000/api.
	APIBaseURL string
	// WSBaseURL is the websocket base, e.g. ws://127.0.0.1:8000/ws.
	WSBaseURL string
	// RequestTimeout bounds a single HTTP call, refresh retry included.
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	api := getEnv("QUIZHUB_API_URL", "http://127.0.0.1:8000/api")
	return &Config{
		APIBaseURL:     strings.TrimRight(api, "/"),
		WSBaseURL:      getEnv("QUIZHUB_WS_URL", deriveWS(api)),
		RequestTimeout: getDuration("QUIZHUB_TIMEOUT", 30*time.Second),
	}
}

// deriveWS maps the REST base to its websocket sibling: scheme http->ws and
// the /api suffix replaced with /ws.
func deriveWS(api string) string {
	ws := api
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	ws = strings.TrimRight(ws, "/")
	ws = strings.TrimSuffix(ws, "/api")
	return ws + "/ws"
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
