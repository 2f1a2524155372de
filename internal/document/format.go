// Package document persists extracted text as plain-text or PDF files.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for any format other than text and PDF.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is an output document format. Its value doubles as file extension.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "txt", "text" and "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (only txt and pdf are supported)", ErrUnsupportedFormat, s)
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f == FormatText || f == FormatPDF
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string { return string(f) }

func (f Format) String() string { return string(f) }
