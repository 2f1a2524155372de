package main

import (
	"fmt"

	"github.com/hyperifyio/pagetext/internal/app"
)

// ExtractCmd saves the text of one page.
type ExtractCmd struct {
	URL     string `arg:"" help:"Absolute http(s) URL of the page."`
	Format  string `short:"f" default:"pdf" help:"Output format: pdf or txt."`
	Name    string `short:"n" help:"Output file name; derived from the URL when empty."`
	NoDedup bool   `name:"no-dedup" help:"Keep repeated lines."`
}

func (c *ExtractCmd) Run(d *Dependencies) error {
	a, err := d.App(wantsPDF(c.Format))
	if err != nil {
		return err
	}
	out, err := a.Extract(d.Ctx, app.ExtractRequest{
		URL:         c.URL,
		Format:      c.Format,
		Deduplicate: d.Config.Deduplicate && !c.NoDedup,
		Filename:    c.Name,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(d.Stdout, out.Path)
	return err
}
