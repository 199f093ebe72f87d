// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads the .env file if present and configures logging. Missing
// .env is fine; real deployments set environment variables directly.
func Load() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment as-is")
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if lvl, err := logrus.ParseLevel(Getenv("LOG_LEVEL", "info")); err == nil {
		logrus.SetLevel(lvl)
	}
	logrus.SetOutput(os.Stdout)
}

// Getenv returns the named variable or fallback when unset or empty.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetenvInt returns the named variable parsed as int, or fallback.
func GetenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// ListenAddr returns the HTTP listen address for the server.
func ListenAddr() string {
	return Getenv("LISTEN_ADDR", ":8080")
}

// DatabaseDSN returns the Postgres connection string, empty if
// persistence is disabled.
func DatabaseDSN() string {
	return Getenv("DATABASE_URL", "")
}

// RedisAddr returns the Redis address, empty if action logging is
// disabled.
func RedisAddr() string {
	return Getenv("REDIS_ADDR", "")
}

// RedisPassword returns the Redis password.
func RedisPassword() string {
	return Getenv("REDIS_PASSWORD", "")
}

// JWTSecret returns the HMAC secret for session tokens.
func JWTSecret() string {
	return Getenv("JWT_SECRET", "dev-secret-change-me")
}

// TurnTimerSec returns the per-turn time limit in seconds, 0 disables.
func TurnTimerSec() int {
	return GetenvInt("TURN_TIMER_SEC", 30)
}
