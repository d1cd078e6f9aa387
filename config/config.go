package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Environment variables provide
// defaults; CLI flags override them.
type Config struct {
	Browser   BrowserConfig
	Fetcher   FetcherConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs in server mode).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path. Empty means
	// auto-detect from the system.
	BrowserBin string

	// Proxy is the proxy URL for all requests.
	Proxy string
}

// FetcherConfig controls fetch behavior shared by the browser and HTTP paths.
type FetcherConfig struct {
	// DefaultTimeout bounds navigation and rendering per request.
	DefaultTimeout time.Duration // default: 60s

	// MaxTimeout is the maximum timeout a client may request.
	MaxTimeout time.Duration // default: 300s

	// DefaultWait is the extra wait after page load for JS rendering.
	DefaultWait time.Duration // default: 2s

	// BlockedResourceTypes lists browser resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// ServerConfig controls the HTTP server started by `getmd serve`.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication in server mode.
type AuthConfig struct {
	// APIKeys is the list of valid API keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting in server mode.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the server-mode response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 256
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:   envBoolOr("GETMD_HEADLESS", true),
			MaxPages:   envIntOr("GETMD_MAX_PAGES", 4),
			NoSandbox:  envBoolOr("GETMD_NO_SANDBOX", false),
			BrowserBin: os.Getenv("GETMD_BROWSER_BIN"),
			Proxy:      os.Getenv("GETMD_PROXY"),
		},
		Fetcher: FetcherConfig{
			DefaultTimeout: envDurationOr("GETMD_TIMEOUT", 60*time.Second),
			MaxTimeout:     envDurationOr("GETMD_MAX_TIMEOUT", 300*time.Second),
			DefaultWait:    envDurationOr("GETMD_WAIT", 2*time.Second),
			BlockedResourceTypes: envSliceOr("GETMD_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Server: ServerConfig{
			Host: envOr("GETMD_HOST", "127.0.0.1"),
			Port: envIntOr("GETMD_PORT", 8080),
			Mode: envOr("GETMD_MODE", "release"),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("GETMD_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GETMD_RATE_RPS", 2.0),
			Burst:             envIntOr("GETMD_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("GETMD_CACHE_MAX_ENTRIES", 256),
		},
		Log: LogConfig{
			Level:  envOr("GETMD_LOG_LEVEL", "info"),
			Format: envOr("GETMD_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
