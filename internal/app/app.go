package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagetext/internal/document"
	"github.com/hyperifyio/pagetext/internal/extract"
	"github.com/hyperifyio/pagetext/internal/fetch"
	"github.com/hyperifyio/pagetext/internal/links"
	"github.com/hyperifyio/pagetext/internal/weburl"
)

// App runs the fetch, extract and write pipeline. It keeps configuration
// only; every call builds its own working data, so one App can serve any
// number of concurrent requests.
type App struct {
	cfg       Config
	fetcher   pageFetcher
	extractor extract.Extractor
	writer    *document.Writer
}

type pageFetcher interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// ExtractRequest asks for the text of one page.
type ExtractRequest struct {
	URL string
	// Format is "txt", "text" or "pdf".
	Format      string
	Deduplicate bool
	// Filename overrides the name derived from the URL.
	Filename string
}

// New validates cfg and, unless cfg.TextOnly is set, loads the PDF font. A
// missing or unusable font fails here rather than on the first PDF request.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	var font *document.Font
	if !cfg.TextOnly {
		var err error
		if font, err = document.LoadFont(cfg.FontPath); err != nil {
			return nil, err
		}
	}
	client := &fetch.Client{
		HTTPClient:        newFetchHTTPClient(cfg.FetchTimeout, cfg.SSLVerify),
		UserAgent:         cfg.UserAgent,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   cfg.RedirectMaxHops,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
	return &App{
		cfg:       cfg,
		fetcher:   client,
		extractor: extract.TextExtractor{},
		writer:    &document.Writer{Dir: cfg.OutputDir, Font: font},
	}, nil
}

// Extract fetches req.URL, extracts its text and writes it in req.Format.
// URL, format and filename problems are reported before any network or disk
// access.
func (a *App) Extract(ctx context.Context, req ExtractRequest) (document.OutputFile, error) {
	t, err := planOutput(req)
	if err != nil {
		return document.OutputFile{}, err
	}
	return a.run(ctx, req, t)
}

func (a *App) run(ctx context.Context, req ExtractRequest, t target) (document.OutputFile, error) {
	start := time.Now()
	logger := log.With().Str("url", t.url.String()).Str("format", t.format.String()).Logger()
	logger.Info().Bool("dedup", req.Deduplicate).Str("file", t.name).Msg("extract request")

	page, err := a.fetcher.Get(ctx, t.url.String())
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed")
		return document.OutputFile{}, err
	}

	doc, err := a.extractor.Extract(page.HTML, extract.Options{Deduplicate: req.Deduplicate})
	if err != nil {
		if !errors.Is(err, extract.ErrParseFailure) {
			return document.OutputFile{}, err
		}
		logger.Warn().Err(err).Msg("unparseable page; writing empty document")
		doc = extract.Document{}
	}
	logger.Debug().Int("lines", len(doc.Lines)).Str("title", doc.Title).Msg("text extracted")

	out, err := a.writer.Write(t.name, doc, t.format)
	if err != nil {
		logger.Error().Err(err).Msg("write failed")
		return document.OutputFile{}, err
	}
	logger.Info().Str("path", out.Path).Dur("elapsed", time.Since(start)).Msg("extract done")
	return out, nil
}

// ListLinks returns the page's accepted hyperlinks in document order.
func (a *App) ListLinks(ctx context.Context, rawURL string, internalOnly bool) ([]string, error) {
	set, err := a.Links(ctx, rawURL, internalOnly)
	if err != nil {
		return nil, err
	}
	return set.URLs(), nil
}

// Links is ListLinks with each link classified as internal or external.
func (a *App) Links(ctx context.Context, rawURL string, internalOnly bool) (links.LinkSet, error) {
	u, err := weburl.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str("url", u.String()).Str("origin", u.Origin()).Bool("internal_only", internalOnly).Logger()
	logger.Info().Msg("links request")

	page, err := a.fetcher.Get(ctx, u.String())
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed")
		return nil, err
	}
	set, err := links.Extract(page.HTML, u, internalOnly)
	if err != nil {
		if !errors.Is(err, links.ErrParseFailure) {
			return nil, err
		}
		logger.Warn().Err(err).Msg("unparseable page; no links")
		return links.LinkSet{}, nil
	}
	logger.Info().Int("links", len(set)).Msg("links done")
	return set, nil
}

type target struct {
	url    weburl.ParsedURL
	format document.Format
	name   string
}

func planOutput(req ExtractRequest) (target, error) {
	u, err := weburl.Parse(req.URL)
	if err != nil {
		return target{}, err
	}
	format, err := document.ParseFormat(req.Format)
	if err != nil {
		return target{}, err
	}
	name := weburl.Filename(u, format.Extension())
	if req.Filename != "" {
		if name, err = weburl.SanitizeFilename(req.Filename, format.Extension()); err != nil {
			return target{}, fmt.Errorf("output name: %w", err)
		}
	}
	return target{url: u, format: format, name: name}, nil
}
