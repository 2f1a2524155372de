package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// ErrFontUnavailable means the TrueType font needed for PDF output is
// missing or unusable. It is a configuration error, not a per-request one.
var ErrFontUnavailable = errors.New("pdf font unavailable")

// Font is a TrueType font loaded into memory. It is read-only after
// LoadFont and may be shared by concurrent writers.
type Font struct {
	Path string
	data []byte
}

var trueTypeMagic = [][]byte{
	{0x00, 0x01, 0x00, 0x00},
	[]byte("true"),
}

// LoadFont reads the font at path and checks its TrueType signature.
func LoadFont(path string) (*Font, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no font path configured", ErrFontUnavailable)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}
	ok := false
	for _, m := range trueTypeMagic {
		if bytes.HasPrefix(b, m) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a TrueType font", ErrFontUnavailable, path)
	}
	if err := renderCheck(b); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontUnavailable, path, err)
	}
	return &Font{Path: path, data: b}, nil
}

// renderCheck lays out a short line with the font into a discarded PDF, so a
// truncated or corrupt file fails at load time instead of on a request.
func renderCheck(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("font parser panicked: %v", r)
		}
	}()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", data)
	pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	pdf.AddPage()
	pdf.MultiCell(0, pdfLineHeight, "Aa 09", "", "L", false)
	return pdf.Output(io.Discard)
}
