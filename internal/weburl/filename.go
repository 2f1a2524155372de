package weburl

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidFilename is returned for caller-supplied names that cannot be
// used as a plain file name.
var ErrInvalidFilename = errors.New("invalid filename")

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]`)

// Filename derives a deterministic file name from the host and path of u:
// "https://docs.example.com/guide/intro/" with ext "pdf" becomes
// "docs_example_com_guide_intro.pdf". The query string and fragment are not
// part of the name, so URLs differing only there collide.
func Filename(u ParsedURL, ext string) string {
	host := strings.NewReplacer(".", "_", ":", "_").Replace(u.Host)
	path := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_")
	name := host
	if path != "" {
		name = host + "_" + path
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	return name + "." + strings.TrimPrefix(ext, ".")
}

// SanitizeFilename reduces a caller-chosen name to its base component and
// appends ".ext" unless the name already carries it.
func SanitizeFilename(name string, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	base = strings.TrimSpace(base)
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if strings.ContainsFunc(base, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return "", fmt.Errorf("%w: control characters in %q", ErrInvalidFilename, name)
	}
	if !strings.HasSuffix(strings.ToLower(base), "."+strings.ToLower(ext)) {
		base += "." + ext
	}
	return base, nil
}
