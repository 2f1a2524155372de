package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/pagetext/internal/extract"
)

const (
	pdfFontFamily = "body"
	pdfFontSize   = 12
	pdfLineHeight = 10
)

// writePDF lays the whole document out as one flowing block: lines joined by
// newlines in a single MultiCell. Page breaks and margins are gofpdf's
// defaults. A panic inside gofpdf is returned as an error.
func writePDF(path string, doc extract.Document, font *Font) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf renderer panicked: %v", r)
		}
	}()
	if font == nil {
		return fmt.Errorf("%w: writer has no font", ErrFontUnavailable)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", font.data)
	pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	if doc.Title != "" {
		pdf.SetTitle(StripUnrenderable(doc.Title), true)
	}
	pdf.SetCreator("pagetext", true)
	pdf.AddPage()

	text := StripUnrenderable(strings.Join(doc.Lines, "\n"))
	pdf.MultiCell(0, pdfLineHeight, text, "", "L", false)

	// Render fully before creating the file so a failed layout leaves nothing.
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// unrenderable lists the code points the bundled font cannot draw: emoji,
// pictographs, dingbats, box drawing and the rest of the BMP from U+24C2 on,
// joiners and every supplementary-plane rune.
var unrenderable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x231a, Hi: 0x231a, Stride: 1},
		{Lo: 0x23cf, Hi: 0x23cf, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23e9, Stride: 1},
		{Lo: 0x24c2, Hi: 0xffff, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0x10ffff, Stride: 1},
	},
}

// StripUnrenderable removes runes the PDF font cannot render and turns
// no-break spaces and tabs into plain spaces. Plain-text output never goes
// through it.
func StripUnrenderable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00a0' || r == '\t':
			return ' '
		case unicode.Is(unrenderable, r):
			return -1
		}
		return r
	}, s)
}
