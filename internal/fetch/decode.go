package fetch

import (
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// minDetectConfidence is the chardet score below which a guess is ignored.
	minDetectConfidence = 30
	detectSampleBytes   = 64 << 10
)

// Decode converts an HTML body to a Go string. The bytes themselves win over
// the Content-Type header, because pages often misreport their charset:
//
//  1. a byte order mark is authoritative;
//  2. a body that is valid UTF-8 is UTF-8;
//  3. a <meta charset> found by the HTML prescan is used, unless it claims
//     UTF-8 for bytes that are not;
//  4. a confident statistical guess from the bytes;
//  5. then the header charset, when it names a known encoding other than
//     UTF-8;
//  6. otherwise windows-1252.
//
// It returns the decoded text and the canonical encoding name.
func Decode(body []byte, contentType string) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, "")
	switch {
	case certain:
	case validUTF8(body):
		enc, name = lookup("utf-8")
	case name != "utf-8" && name != "windows-1252":
		// Declared by <meta>.
	default:
		enc, name = detect(body)
		if enc == nil {
			if e, n := lookup(declaredCharset(contentType)); e != nil && n != "utf-8" {
				enc, name = e, n
			}
		}
	}
	if enc == nil {
		enc, name = lookup("windows-1252")
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", name, err
	}
	return strings.TrimPrefix(string(out), "\ufeff"), name, nil
}

// detect guesses a legacy encoding from byte statistics. Markup is skipped so
// tag names do not outweigh the text.
func detect(body []byte) (encoding.Encoding, string) {
	sample := body
	if len(sample) > detectSampleBytes {
		sample = sample[:detectSampleBytes]
	}
	res, err := chardet.NewHtmlDetector().DetectBest(sample)
	if err != nil || res == nil || res.Confidence < minDetectConfidence {
		return nil, ""
	}
	e, n := lookup(res.Charset)
	if e == nil || n == "utf-8" {
		return nil, ""
	}
	return e, n
}

func lookup(label string) (encoding.Encoding, string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ""
	}
	e, err := htmlindex.Get(label)
	if err != nil {
		return nil, ""
	}
	name, err := htmlindex.Name(e)
	if err != nil {
		name = strings.ToLower(label)
	}
	return e, name
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// validUTF8 tolerates a rune cut in half at the end, which happens when the
// body was truncated at MaxBodyBytes.
func validUTF8(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}
	for n := 1; n < utf8.UTFMax && n <= len(b); n++ {
		tail := b[len(b)-n:]
		if !utf8.RuneStart(tail[0]) {
			continue
		}
		if utf8.FullRune(tail) {
			return false
		}
		return utf8.Valid(b[:len(b)-n])
	}
	return false
}
