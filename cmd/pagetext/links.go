package main

import (
	"fmt"
)

// LinksCmd prints the links of one page, one per line.
type LinksCmd struct {
	URL      string `arg:"" help:"Absolute http(s) URL of the page."`
	Internal bool   `short:"i" help:"Only links on the page's own origin."`
	Classify bool   `short:"c" help:"Prefix each link with internal or external."`
}

func (c *LinksCmd) Run(d *Dependencies) error {
	a, err := d.App(false)
	if err != nil {
		return err
	}
	set, err := a.Links(d.Ctx, c.URL, c.Internal)
	if err != nil {
		return err
	}
	for _, l := range set {
		if c.Classify {
			kind := "external"
			if l.Internal {
				kind = "internal"
			}
			_, err = fmt.Fprintf(d.Stdout, "%s\t%s\n", kind, l.URL)
		} else {
			_, err = fmt.Fprintln(d.Stdout, l.URL)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
