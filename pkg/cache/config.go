package cache

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the response caching layer.
type Config struct {
	// Enabled controls whether caching is active. When false, no middleware
	// is applied and all requests pass through uncached.
	Enabled bool

	// AuditTTL is the TTL for audit trail read caches. The trail is
	// append-only, so staleness here only delays visibility of new entries.
	AuditTTL time.Duration

	// ImpactTTL is the TTL for impact record read caches. Analysis requests
	// clear this cache, so the TTL only bounds staleness across processes.
	ImpactTTL time.Duration

	// MaxSize is the maximum number of entries per cache instance.
	MaxSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		AuditTTL:  30 * time.Second,
		ImpactTTL: 60 * time.Second,
		MaxSize:   1000,
	}
}

// ConfigFromEnv reads cache configuration from environment variables,
// falling back to defaults for any unset variable.
//
// Environment variables:
//   - FAQPROV_CACHE_ENABLED: "true" or "false" (default: "true")
//   - FAQPROV_CACHE_AUDIT_TTL: duration in seconds (default: 30)
//   - FAQPROV_CACHE_IMPACT_TTL: duration in seconds (default: 60)
//   - FAQPROV_CACHE_MAX_SIZE: max entries per cache (default: 1000)
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("FAQPROV_CACHE_ENABLED"); v != "" {
		cfg.Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	if v := os.Getenv("FAQPROV_CACHE_AUDIT_TTL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.AuditTTL = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("FAQPROV_CACHE_IMPACT_TTL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ImpactTTL = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("FAQPROV_CACHE_MAX_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.MaxSize = size
		}
	}

	return cfg
}
