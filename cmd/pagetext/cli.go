package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hyperifyio/pagetext/internal/app"
	"github.com/hyperifyio/pagetext/internal/document"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string        `help:"YAML or JSON config file." type:"path"`
	EnvFile   []string      `name:"env-file" default:".env" help:"Dotenv files loaded before reading PAGETEXT_* variables."`
	OutDir    string        `name:"out-dir" help:"Directory for output files (default texts)."`
	Font      string        `help:"TrueType font for PDF output (default fonts/arial.ttf)."`
	Timeout   time.Duration `help:"Fetch timeout, e.g. 20s."`
	UserAgent string        `name:"user-agent" help:"User-Agent header sent with requests."`
	Insecure  bool          `help:"Skip TLS certificate verification (self-signed hosts)."`
	Verbose   bool          `short:"v" help:"Verbose logging."`

	Extract ExtractCmd `cmd:"" help:"Save the visible text of a page."`
	Links   LinksCmd   `cmd:"" help:"List the hyperlinks of a page."`
	Batch   BatchCmd   `cmd:"" help:"Extract many pages listed in a file, one 'URL [name]' per line."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// Dependencies carries what commands need at run time.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config app.Config

	newApp func(app.Config) (*app.App, error)
}

// App builds the pipeline from the resolved configuration. The PDF font is
// loaded only when the command can produce PDF output.
func (d *Dependencies) App(pdf bool) (*app.App, error) {
	newApp := d.newApp
	if newApp == nil {
		newApp = app.New
	}
	cfg := d.Config
	cfg.TextOnly = !pdf
	a, err := newApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}
	return a, nil
}

// buildConfig layers defaults, config file, environment and flags, in that
// order of increasing precedence.
func (c *CLI) buildConfig() (app.Config, error) {
	if err := app.LoadEnvFiles(c.EnvFile...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := app.DefaultConfig()
	if c.Config != "" {
		fc, err := app.LoadConfigFile(c.Config)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return app.Config{}, fmt.Errorf("load config: %w", err)
			}
			return app.Config{}, fmt.Errorf("config file %s not found", c.Config)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	if c.OutDir != "" {
		cfg.OutputDir = c.OutDir
	}
	if c.Font != "" {
		cfg.FontPath = c.Font
	}
	if c.Timeout > 0 {
		cfg.FetchTimeout = c.Timeout
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if c.Insecure {
		cfg.SSLVerify = false
	}
	if c.Verbose {
		cfg.Verbose = true
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// wantsPDF reports whether format selects PDF. Unknown formats do not; the
// request itself reports them.
func wantsPDF(format string) bool {
	f, err := document.ParseFormat(format)
	return err == nil && f == document.FormatPDF
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (c *VersionCmd) Run(d *Dependencies) error {
	_, err := fmt.Fprintln(d.Stdout, app.VersionString())
	return err
}
