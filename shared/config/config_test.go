package config

import (
	"errors"
	"slices"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "API_BASE_URL", "BASE_URL", "AUTHOR_DOMAIN", "CORS_ALLOWED_ORIGINS",
	"PROFILE_STORE", "SQLITE_DB_PATH", "TRUSTED_PROXIES", "REDIS_URL", "STATE_TTL", "API_TIMEOUT", "RATE_LIMIT",
}

func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.com/")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q, trailing slash not trimmed", cfg.APIBaseURL)
	}
	if cfg.AuthorDomain != "itshivam.in" {
		t.Errorf("AuthorDomain = %q", cfg.AuthorDomain)
	}
	if !slices.Equal(cfg.CorsAllowedOrigins, []string{"*"}) {
		t.Errorf("CorsAllowedOrigins = %v", cfg.CorsAllowedOrigins)
	}
	if cfg.ProfileStore != StoreSQLite || cfg.SQLitePath != "./postfeed.db" {
		t.Errorf("store = %q at %q", cfg.ProfileStore, cfg.SQLitePath)
	}
	if cfg.StateTTL != 30*time.Minute || cfg.APITimeout != 10*time.Second {
		t.Errorf("StateTTL = %v, APITimeout = %v", cfg.StateTTL, cfg.APITimeout)
	}
	if cfg.RateLimit != 60 {
		t.Errorf("RateLimit = %d, want 60", cfg.RateLimit)
	}
	if cfg.TrustedProxies != nil {
		t.Errorf("TrustedProxies = %v, want none trusted by default", cfg.TrustedProxies)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "http://localhost:3000")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PROFILE_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STATE_TTL", "5m")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 192.168.0.0/16")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !slices.Equal(cfg.CorsAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("CorsAllowedOrigins = %v", cfg.CorsAllowedOrigins)
	}
	if cfg.ProfileStore != StoreRedis {
		t.Errorf("ProfileStore = %q", cfg.ProfileStore)
	}
	if cfg.StateTTL != 5*time.Minute {
		t.Errorf("StateTTL = %v", cfg.StateTTL)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %d", cfg.RateLimit)
	}
	if !slices.Equal(cfg.TrustedProxies, []string{"10.0.0.1", "192.168.0.0/16"}) {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "Missing API base URL",
			env:  map[string]string{},
		},
		{
			name: "Redis without URL",
			env:  map[string]string{"API_BASE_URL": "http://api", "PROFILE_STORE": "redis"},
		},
		{
			name: "Unknown store",
			env:  map[string]string{"API_BASE_URL": "http://api", "PROFILE_STORE": "mongo"},
		},
		{
			name: "Bad duration",
			env:  map[string]string{"API_BASE_URL": "http://api", "API_TIMEOUT": "soon"},
		},
		{
			name: "Negative duration",
			env:  map[string]string{"API_BASE_URL": "http://api", "STATE_TTL": "-1m"},
		},
		{
			name: "Bad rate limit",
			env:  map[string]string{"API_BASE_URL": "http://api", "RATE_LIMIT": "lots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("FromEnv() expected error")
			}
		})
	}
}

func TestFromEnv_MissingAPIBaseURL(t *testing.T) {
	clearEnv(t)
	if _, err := FromEnv(); !errors.Is(err, ErrMissingAPIBaseURL) {
		t.Errorf("error = %v, want ErrMissingAPIBaseURL", err)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"*", []string{"*"}},
		{"", []string{"*"}},
		{" , ", []string{"*"}},
		{"a,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitCSV(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
