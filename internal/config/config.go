package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBPath       string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "./inventory.db"),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8080"
	}

	return cfg, nil
}

// loadKey reads a base64-encoded 32-byte key from the environment, generating
// a throwaway one when it is missing or malformed. Generated keys invalidate
// sessions on restart, so they are only for development.
func loadKey(envVar string) []byte {
	keyStr := os.Getenv(envVar)
	if keyStr == "" {
		slog.Warn("Key not set, generating a random one for development. Set it in production!", "var", envVar)
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil || len(decoded) < 32 {
		slog.Warn("Key is invalid or shorter than 32 bytes, generating a random one. Set a secure value in production!", "var", envVar)
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; refuse to start
		// with a predictable key.
		slog.Error("Failed to read random bytes", "error", err)
		os.Exit(1)
	}
	return b
}
