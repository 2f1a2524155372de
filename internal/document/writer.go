package document

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagetext/internal/extract"
)

// DefaultDir is where output files land unless configured otherwise.
const DefaultDir = "texts"

// OutputFile is a document written to disk.
type OutputFile struct {
	Name   string
	Path   string
	Format Format
	Size   int64
}

// Writer stores documents under Dir. Existing files with the same name are
// overwritten. A Writer holds no per-request state.
type Writer struct {
	Dir  string
	Font *Font
}

// Write serializes doc as name in the given format. The format is checked
// before anything touches the disk. A failure part way through leaves a
// truncated file behind; callers must not treat it as valid.
func (w *Writer) Write(name string, doc extract.Document, format Format) (OutputFile, error) {
	if !format.Valid() {
		return OutputFile{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return OutputFile{}, fmt.Errorf("write document: invalid file name %q", name)
	}
	if format == FormatPDF && w.Font == nil {
		return OutputFile{}, fmt.Errorf("%w: writer has no font", ErrFontUnavailable)
	}

	dir := w.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return OutputFile{}, fmt.Errorf("mkdir output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	var err error
	switch format {
	case FormatText:
		err = writeText(path, doc.Lines)
	case FormatPDF:
		err = writePDF(path, doc, w.Font)
	}
	if err != nil {
		return OutputFile{}, fmt.Errorf("write %s: %w", format, err)
	}

	out := OutputFile{Name: name, Path: path, Format: format}
	if fi, err := os.Stat(path); err == nil {
		out.Size = fi.Size()
	}
	log.Info().Str("path", path).Str("format", format.String()).Int("lines", len(doc.Lines)).Int64("bytes", out.Size).Msg("document written")
	return out, nil
}

func writeText(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLines reads a text document back into its lines.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
