package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Output struct {
		Dir  string `yaml:"dir" json:"dir"`
		Font string `yaml:"font" json:"font"`
	} `yaml:"output" json:"output"`

	Fetch struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		Timeout       Duration      `yaml:"timeout" json:"timeout"`
		MaxRedirects  int           `yaml:"maxRedirects" json:"maxRedirects"`
		MaxBodyBytes  int64         `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
		SSLVerify     *bool         `yaml:"sslVerify" json:"sslVerify"`
	} `yaml:"fetch" json:"fetch"`

	// Deduplicate is a pointer so an explicit false in the file can turn the default off.
	Deduplicate *bool `yaml:"deduplicate" json:"deduplicate"`
	Batch       struct {
		Concurrency int `yaml:"concurrency" json:"concurrency"`
	} `yaml:"batch" json:"batch"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration is a time.Duration written as "20s" in both YAML and JSON. Bare
// numbers are nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*d = Duration(time.Duration(x))
		return nil
	case string:
		return d.parse(x)
	}
	return fmt.Errorf("invalid duration %s", b)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. Call it on
// DefaultConfig() before environment and flags are applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Output.Dir != "" {
		cfg.OutputDir = fc.Output.Dir
	}
	if fc.Output.Font != "" {
		cfg.FontPath = fc.Output.Font
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if fc.Fetch.MaxRedirects > 0 {
		cfg.RedirectMaxHops = fc.Fetch.MaxRedirects
	}
	if fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if fc.Fetch.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.Fetch.MaxConcurrent
	}
	if fc.Fetch.SSLVerify != nil {
		cfg.SSLVerify = *fc.Fetch.SSLVerify
	}
	if fc.Deduplicate != nil {
		cfg.Deduplicate = *fc.Deduplicate
	}
	if fc.Batch.Concurrency > 0 {
		cfg.BatchConcurrency = fc.Batch.Concurrency
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}
