// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings of the service, read from the
// environment with an optional .env file.
type Config struct {
	// DataDir holds the table files and report exports.
	DataDir string
	// Port is the HTTP listen port.
	Port string
	// SessionTTL bounds how long an operator session stays valid.
	SessionTTL time.Duration
	// MaxLoginAttempts is the consecutive-failure lockout threshold.
	MaxLoginAttempts int
}

// Load reads the configuration. A .env file in the working directory is
// applied first when present; real environment variables win over it.
func Load() Config {
	_ = godotenv.Load()

	ttl := 30 * time.Minute
	if sec, err := strconv.Atoi(getEnv("SESSION_TTL_SECONDS", "1800")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	attempts := 3
	if n, err := strconv.Atoi(getEnv("MAX_LOGIN_ATTEMPTS", "3")); err == nil && n > 0 {
		attempts = n
	}

	return Config{
		DataDir:          getEnv("TECHLAB_DATA_DIR", "./data"),
		Port:             getEnv("PORT", "8080"),
		SessionTTL:       ttl,
		MaxLoginAttempts: attempts,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
