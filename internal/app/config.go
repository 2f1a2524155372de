package app

import (
	"errors"
	"strings"
	"time"

	"github.com/hyperifyio/pagetext/internal/document"
	"github.com/hyperifyio/pagetext/internal/fetch"
)

// Defaults used when neither file, environment nor flags set a value.
const (
	DefaultFontPath         = "fonts/arial.ttf"
	DefaultFetchTimeout     = 30 * time.Second
	DefaultRedirectMaxHops  = 5
	DefaultBatchConcurrency = 4
)

// Config holds runtime configuration for the application.
type Config struct {
	// Output
	OutputDir string
	FontPath  string
	// TextOnly skips loading the PDF font; PDF requests then fail with
	// document.ErrFontUnavailable.
	TextOnly bool

	// Fetching
	UserAgent       string
	FetchTimeout    time.Duration
	RedirectMaxHops int
	MaxBodyBytes    int64
	// MaxConcurrent caps simultaneous fetches across all requests; 0 is unlimited.
	MaxConcurrent int
	// SSLVerify checks server certificates; turn off only for self-signed hosts.
	SSLVerify bool

	// Behavior
	Deduplicate      bool
	BatchConcurrency int
	Verbose          bool
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		OutputDir:        document.DefaultDir,
		FontPath:         DefaultFontPath,
		UserAgent:        fetch.DefaultUserAgent,
		FetchTimeout:     DefaultFetchTimeout,
		RedirectMaxHops:  DefaultRedirectMaxHops,
		MaxBodyBytes:     fetch.DefaultMaxBodyBytes,
		SSLVerify:        true,
		Deduplicate:      true,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}

// ValidateConfig performs minimal validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("config: output dir is required")
	}
	if !cfg.TextOnly && strings.TrimSpace(cfg.FontPath) == "" {
		return errors.New("config: font path is required")
	}
	if cfg.FetchTimeout < 0 {
		return errors.New("config: fetch timeout must not be negative")
	}
	if cfg.RedirectMaxHops < 0 || cfg.MaxBodyBytes < 0 || cfg.MaxConcurrent < 0 || cfg.BatchConcurrency < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
