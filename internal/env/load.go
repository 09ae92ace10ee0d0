package env

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Load reads a .env file into the process environment if one exists and
// reports whether it did.
func Load() bool {
	return godotenv.Load() == nil
}

func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetInt returns fallback when the variable is unset or not an integer.
func GetInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// GetDuration accepts Go duration strings ("200ms") or bare milliseconds.
func GetDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

// GetList splits a comma-separated value, dropping empty entries.
func GetList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(Get(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MustGetEnv returns a required, non-empty variable or terminates the process.
func MustGetEnv(log *zap.Logger, key string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		log.Fatal("environment variable not set", zap.String("key", key))
	}
	return val
}
