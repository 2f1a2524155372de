package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with PAGETEXT_* environment
// variables that are set. Env sits above the config file and below flags.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("PAGETEXT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("PAGETEXT_FONT"); v != "" {
		cfg.FontPath = v
	}
	if v := os.Getenv("PAGETEXT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	if s := os.Getenv("PAGETEXT_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.FetchTimeout = d
		}
	}

	setInt := func(dst *int, envKey string) {
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n >= 0 {
				*dst = n
			}
		}
	}
	setInt(&cfg.RedirectMaxHops, "PAGETEXT_MAX_REDIRECTS")
	setInt(&cfg.MaxConcurrent, "PAGETEXT_MAX_CONCURRENT")
	setInt(&cfg.BatchConcurrency, "PAGETEXT_BATCH_CONCURRENCY")

	if s := strings.TrimSpace(os.Getenv("PAGETEXT_MAX_BODY_BYTES")); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.Deduplicate, "PAGETEXT_DEDUPLICATE")
	setBool(&cfg.SSLVerify, "SSL_VERIFY")
	setBool(&cfg.Verbose, "VERBOSE")
}
