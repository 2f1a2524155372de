// Package links discovers the hyperlinks of a single page, resolves them
// against the page address and classifies them as internal or external.
package links

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/pagetext/internal/weburl"
)

// ErrParseFailure is returned when the HTML cannot be read.
var ErrParseFailure = errors.New("html parse failure")

// Link is an absolute URL found on a page.
type Link struct {
	URL string
	// Internal is true when the link shares the page's origin.
	Internal bool
}

// LinkSet holds unique links in first-seen document order.
type LinkSet []Link

// URLs returns the link addresses in order.
func (s LinkSet) URLs() []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[i] = l.URL
	}
	return out
}

// Internal returns the links sharing the page origin.
func (s LinkSet) Internal() LinkSet { return s.filter(true) }

// External returns the links pointing elsewhere.
func (s LinkSet) External() LinkSet { return s.filter(false) }

func (s LinkSet) filter(internal bool) LinkSet {
	out := make(LinkSet, 0, len(s))
	for _, l := range s {
		if l.Internal == internal {
			out = append(out, l)
		}
	}
	return out
}

// Extract scans the anchors of html that carry an href. An href is kept when
//   - it contains no "#";
//   - it starts with "/", in which case it is resolved against base; or
//   - it is an absolute http(s) URL, restricted to base's origin when
//     internalOnly is set.
//
// In internal-only mode every kept link must share base's origin, which also
// drops protocol-relative "//other.host/" references. Anything else is
// ignored without error. Results are unique by resolved URL.
func Extract(html string, base weburl.ParsedURL, internalOnly bool) (LinkSet, error) {
	if base.IsZero() {
		return nil, errors.New("links: base URL is required")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	baseURL := base.URL()
	seen := make(map[string]struct{})
	var set LinkSet

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		u, ok := accept(baseURL, strings.TrimSpace(href), internalOnly)
		if !ok {
			return
		}
		resolved := u.String()
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		set = append(set, Link{URL: resolved, Internal: weburl.SameOrigin(baseURL, u)})
	})

	return set, nil
}

func accept(base *url.URL, href string, internalOnly bool) (*url.URL, bool) {
	if href == "" || strings.Contains(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}

	var u *url.URL
	switch {
	case strings.HasPrefix(href, "/"):
		u = base.ResolveReference(ref)
	case ref.IsAbs() && weburl.IsHTTPScheme(ref) && ref.Host != "":
		u = ref
	default:
		return nil, false
	}
	if internalOnly && !weburl.SameOrigin(base, u) {
		return nil, false
	}
	return u, true
}
