// Package weburl validates user-supplied page addresses and derives
// filesystem names from them.
package weburl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for input that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// ParsedURL is the decomposed form of a validated absolute URL. Scheme and
// Host are always non-empty. Values are immutable; use URL() for a copy that
// may be modified.
type ParsedURL struct {
	Scheme   string
	Host     string
	Path     string
	RawQuery string
	Fragment string

	u url.URL
}

// Parse validates raw as an absolute http or https URL.
func Parse(raw string) (ParsedURL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedURL{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	u, err := url.Parse(s)
	if err != nil {
		return ParsedURL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	// A bare "example.com" parses fine but lands entirely in Path.
	if u.Scheme == "" {
		return ParsedURL{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURL, s)
	}
	if u.Host == "" || u.Hostname() == "" {
		return ParsedURL{}, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, s)
	}
	if !IsHTTPScheme(u) {
		return ParsedURL{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return ParsedURL{
		Scheme:   strings.ToLower(u.Scheme),
		Host:     u.Host,
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
		u:        *u,
	}, nil
}

// String reassembles the URL, preserving the original path escaping.
func (p ParsedURL) String() string {
	u := p.u
	return u.String()
}

// URL returns a fresh *url.URL for the parsed value.
func (p ParsedURL) URL() *url.URL {
	u := p.u
	return &u
}

// Origin returns scheme://host with the scheme and hostname lower-cased and
// the port omitted when it is the scheme default.
func (p ParsedURL) Origin() string {
	return origin(&p.u)
}

// IsZero reports whether p is the zero value, i.e. not produced by Parse.
func (p ParsedURL) IsZero() bool {
	return p.Scheme == "" && p.Host == ""
}

// IsHTTPScheme reports whether u uses http or https.
func IsHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// SameOrigin compares scheme, hostname and effective port. Unlike a string
// prefix test, "https://a.com.evil.com" is not same-origin with "https://a.com".
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Host == "" || b.Host == "" {
		return false
	}
	return origin(a) == origin(b)
}

func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPort(scheme) {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}
