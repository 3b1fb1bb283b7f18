package runs

import (
	"os"
	"strconv"
	"time"
)

// RunConfig controls the detection run queue and worker behavior.
type RunConfig struct {
	Concurrency   int           // Max concurrent workers. Default 3.
	MaxRetries    int           // Max retry attempts per run. Default 3.
	PollInterval  time.Duration // How often workers poll for new runs. Default 5s.
	ClaimTimeout  time.Duration // Max time a run can be in "running" before considered stuck. Default 10m.
	RetentionDays int           // How long to keep terminal runs. Default 7.
	Enabled       bool          // Whether the run system is active. Default true.
}

// DefaultRunConfig returns the default run configuration.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Concurrency:   3,
		MaxRetries:    3,
		PollInterval:  5 * time.Second,
		ClaimTimeout:  10 * time.Minute,
		RetentionDays: 7,
		Enabled:       true,
	}
}

// RunConfigFromEnv loads config from environment variables.
// FAQPROV_RUN_CONCURRENCY, FAQPROV_RUN_MAX_RETRIES, FAQPROV_RUN_POLL_INTERVAL_SECONDS,
// FAQPROV_RUN_CLAIM_TIMEOUT_MINUTES, FAQPROV_RUN_RETENTION_DAYS, FAQPROV_RUN_ENABLED
func RunConfigFromEnv() *RunConfig {
	cfg := DefaultRunConfig()

	if v := os.Getenv("FAQPROV_RUN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}

	if v := os.Getenv("FAQPROV_RUN_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	if v := os.Getenv("FAQPROV_RUN_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("FAQPROV_RUN_CLAIM_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ClaimTimeout = time.Duration(n) * time.Minute
		}
	}

	if v := os.Getenv("FAQPROV_RUN_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetentionDays = n
		}
	}

	if v := os.Getenv("FAQPROV_RUN_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}

	return cfg
}
