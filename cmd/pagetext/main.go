package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagetext/internal/app"
	"github.com/hyperifyio/pagetext/internal/document"
	"github.com/hyperifyio/pagetext/internal/fetch"
	"github.com/hyperifyio/pagetext/internal/weburl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Error().Err(err).Msg("pagetext failed")
		stop()
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps errors to the process exit status: 2 for rejected input,
// 3 for fetch failures, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, weburl.ErrInvalidURL),
		errors.Is(err, weburl.ErrInvalidFilename),
		errors.Is(err, document.ErrUnsupportedFormat):
		return 2
	case errors.Is(err, fetch.ErrFetchFailed):
		return 3
	}
	return 1
}

// Main represents the program.
type Main struct {
	// NewApp builds the pipeline; tests may replace it.
	NewApp func(app.Config) (*app.App, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{NewApp: app.New}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		newApp: m.NewApp,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagetext"),
		kong.Description("Save the visible text of a web page as TXT or PDF, or list its links."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pagetext --help' to see available commands")
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	setupLogging(stderr, cli.Verbose)

	cfg, err := cli.buildConfig()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	deps.Config = cfg

	return kctx.Run()
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
