package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperifyio/pagetext/internal/app"
)

// BatchCmd extracts every page listed in a file.
type BatchCmd struct {
	File        string `arg:"" help:"File with one 'URL [name]' per line; '-' reads stdin."`
	Format      string `short:"f" default:"pdf" help:"Output format: pdf or txt."`
	NoDedup     bool   `name:"no-dedup" help:"Keep repeated lines."`
	Concurrency int    `short:"c" help:"Pages processed at once (default from config)."`
}

func (c *BatchCmd) Run(d *Dependencies) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}
	reqs, err := parseBatch(r, c.Format, d.Config.Deduplicate && !c.NoDedup)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("batch file %s lists no URLs", c.File)
	}

	a, err := d.App(wantsPDF(c.Format))
	if err != nil {
		return err
	}
	failed := 0
	for _, res := range a.ExtractBatch(d.Ctx, reqs, c.Concurrency) {
		if res.Err != nil {
			failed++
			fmt.Fprintf(d.Stdout, "error\t%s\t%v\n", res.Request.URL, res.Err)
			continue
		}
		fmt.Fprintf(d.Stdout, "ok\t%s\t%s\n", res.Request.URL, res.File.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(reqs))
	}
	return nil
}

// parseBatch reads "URL [name]" lines, skipping blanks and '#' comments.
func parseBatch(r io.Reader, format string, dedup bool) ([]app.ExtractRequest, error) {
	var reqs []app.ExtractRequest
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("batch line %d: want 'URL [name]', got %q", n, line)
		}
		req := app.ExtractRequest{URL: fields[0], Format: format, Deduplicate: dedup}
		if len(fields) == 2 {
			req.Filename = fields[1]
		}
		reqs = append(reqs, req)
	}
	return reqs, scanner.Err()
}
