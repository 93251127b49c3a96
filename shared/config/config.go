package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

var ErrMissingAPIBaseURL = errors.New("API_BASE_URL is required")

type Config struct {
	Port               string
	APIBaseURL         string
	BaseURL            string
	AuthorDomain       string
	CorsAllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies     []string
	ProfileStore       string
	SQLitePath         string
	RedisURL           string
	StateTTL           time.Duration
	APITimeout         time.Duration
	RateLimit          int
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		BaseURL:            strings.TrimRight(getEnv("BASE_URL", ""), "/"),
		AuthorDomain:       getEnv("AUTHOR_DOMAIN", "itshivam.in"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		ProfileStore:       strings.ToLower(getEnv("PROFILE_STORE", StoreSQLite)),
		SQLitePath:         getEnv("SQLITE_DB_PATH", "./postfeed.db"),
		RedisURL:           getEnv("REDIS_URL", ""),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, ErrMissingAPIBaseURL
	}

	var err error
	if cfg.StateTTL, err = getDuration("STATE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 60); err != nil {
		return Config{}, err
	}

	switch cfg.ProfileStore {
	case StoreSQLite:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when PROFILE_STORE=%s", StoreRedis)
		}
	default:
		return Config{}, fmt.Errorf("unknown PROFILE_STORE %q", cfg.ProfileStore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", key, raw)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a non-negative integer", key, raw)
	}
	return n, nil
}

// splitList splits a comma separated list, returning nil when it is empty.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
