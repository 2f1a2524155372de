package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dyatlov/go-opengraph/opengraph"
	"golang.org/x/net/html"
)

// ErrParseFailure is returned when the input cannot be read as HTML at all.
// Structural noise never triggers it; the parser repairs that.
var ErrParseFailure = errors.New("html parse failure")

// Document is the visible text of a page as ordered, normalized lines.
// Lines are never empty and carry no leading, trailing or repeated spaces.
type Document struct {
	Title string
	Lines []string
}

// Options controls Text.
type Options struct {
	// Deduplicate keeps only the first occurrence of each line.
	Deduplicate bool
}

// Text extracts every visible text node of input. Nodes are joined with a
// single space so adjacent inline elements do not collide, the result is
// split on hard line breaks and each line is normalized.
func Text(input string, opts Options) (Document, error) {
	node, err := html.ParseWithOptions(strings.NewReader(input), html.ParseOptionEnableScripting(false))
	if err != nil || node == nil {
		return Document{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	var parts []string
	collectText(&parts, node)
	lines := SplitLines(strings.Join(parts, " "))
	if opts.Deduplicate {
		lines = Dedupe(lines)
	}
	return Document{Title: pageTitle(input, node), Lines: lines}, nil
}

func collectText(parts *[]string, n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "template":
			return
		}
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(parts, c)
	}
}

var multiSpace = regexp.MustCompile(` {2,}`)

// SplitLines splits text on hard line breaks and normalizes each line:
// surrounding whitespace is trimmed and runs of two or more spaces, the
// usual residue of indented markup, become one space. Empty lines are dropped.
func SplitLines(text string) []string {
	raw := strings.FieldsFunc(text, isLineBreak)
	lines := make([]string, 0, len(raw))
	for _, r := range raw {
		if line := NormalizeLine(r); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// NormalizeLine trims s and collapses its multi-space runs. Single spaces
// between words are kept as they are.
func NormalizeLine(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "  ") {
		return s
	}
	phrases := multiSpace.Split(s, -1)
	out := phrases[:0]
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// Dedupe returns lines with repeats removed, keeping each line at the
// position of its first occurrence.
func Dedupe(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// pageTitle prefers og:title and falls back to <head><title>.
func pageTitle(input string, root *html.Node) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(input)); err == nil {
		if t := NormalizeLine(og.Title); t != "" {
			return t
		}
	}
	return NormalizeLine(findTitle(root))
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}
