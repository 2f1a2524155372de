package main_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/hyperifyio/pagetext/cmd/pagetext"
	"github.com/hyperifyio/pagetext/internal/document"
	"github.com/hyperifyio/pagetext/internal/fetch"
	"github.com/hyperifyio/pagetext/internal/weburl"
)

const page = `<html><head><title>Home</title></head><body>
<p>Hello   world</p>
<p>Hello   world</p>
<a href="/about">about</a>
<a href="https://elsewhere.example/x">out</a>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// globalArgs points output at a temp dir, the font at a file that does not
// exist and dotenv lookups away from the working directory.
func globalArgs(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	font := filepath.Join(dir, "absent.ttf")
	out := filepath.Join(dir, "out")
	return out, []string{"--out-dir", out, "--font", font, "--env-file", filepath.Join(dir, "none.env")}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := main.NewMain().Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_NoArgsPrintsHelp(t *testing.T) {
	stdout, _, err := run(t)
	require.Error(t, err)
	for _, cmd := range []string{"extract", "links", "batch", "version"} {
		assert.Contains(t, stdout, cmd)
	}
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pagetext")
}

func TestRun_ExtractText(t *testing.T) {
	srv := newSite(t)
	out, global := globalArgs(t)

	stdout, _, err := run(t, append([]string{"extract", srv.URL + "/docs/intro", "--format", "txt"}, global...)...)
	require.NoError(t, err)

	path := strings.TrimSpace(stdout)
	assert.Equal(t, out, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_docs_intro.txt"), path)

	lines, err := document.ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Hello world", "about", "out"}, lines)
}

func TestRun_ExtractNoDedupAndName(t *testing.T) {
	srv := newSite(t)
	out, global := globalArgs(t)

	args := append([]string{"extract", srv.URL, "-f", "txt", "--no-dedup", "--name", "home"}, global...)
	stdout, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "home.txt"), strings.TrimSpace(stdout))

	lines, err := document.ReadLines(filepath.Join(out, "home.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Hello world", "Hello world", "about", "out"}, lines)
}

func TestRun_ExtractRejectsBadInput(t *testing.T) {
	_, global := globalArgs(t)

	_, _, err := run(t, append([]string{"extract", "ftp://example.com/", "-f", "txt"}, global...)...)
	require.ErrorIs(t, err, weburl.ErrInvalidURL)
	assert.Equal(t, 2, main.ExitCode(err))

	_, _, err = run(t, append([]string{"extract", "https://example.com/", "-f", "docx"}, global...)...)
	require.ErrorIs(t, err, document.ErrUnsupportedFormat)
	assert.Equal(t, 2, main.ExitCode(err))
}

func TestRun_PDFNeedsFont(t *testing.T) {
	srv := newSite(t)
	out, global := globalArgs(t)

	_, _, err := run(t, append([]string{"extract", srv.URL, "-f", "pdf"}, global...)...)
	require.ErrorIs(t, err, document.ErrFontUnavailable)
	assert.Equal(t, 1, main.ExitCode(err))
	assert.NoDirExists(t, out)
}

func TestRun_ExtractFetchFailure(t *testing.T) {
	srv := newSite(t)
	out, global := globalArgs(t)

	_, _, err := run(t, append([]string{"extract", srv.URL + "/missing", "-f", "txt"}, global...)...)
	require.ErrorIs(t, err, fetch.ErrFetchFailed)
	assert.Equal(t, 3, main.ExitCode(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output directory on fetch failure")
}

func TestRun_Links(t *testing.T) {
	srv := newSite(t)
	_, global := globalArgs(t)

	stdout, _, err := run(t, append([]string{"links", srv.URL}, global...)...)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/about\nhttps://elsewhere.example/x\n", stdout)

	stdout, _, err = run(t, append([]string{"links", srv.URL, "--internal"}, global...)...)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/about\n", stdout)

	stdout, _, err = run(t, append([]string{"links", srv.URL, "--classify"}, global...)...)
	require.NoError(t, err)
	assert.Equal(t, "internal\t"+srv.URL+"/about\nexternal\thttps://elsewhere.example/x\n", stdout)
}

func TestRun_Batch(t *testing.T) {
	srv := newSite(t)
	out, global := globalArgs(t)

	list := filepath.Join(t.TempDir(), "urls.txt")
	content := strings.Join([]string{
		"# pages to save",
		srv.URL + "/a first",
		"",
		srv.URL + "/b",
		srv.URL + "/missing",
	}, "\n")
	require.NoError(t, os.WriteFile(list, []byte(content), 0o600))

	stdout, _, err := run(t, append([]string{"batch", list, "-f", "txt"}, global...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 pages failed")
	assert.Equal(t, 1, main.ExitCode(err))

	assert.Contains(t, stdout, "ok\t"+srv.URL+"/a\t"+filepath.Join(out, "first.txt"))
	assert.Contains(t, stdout, "error\t"+srv.URL+"/missing\t")
	assert.FileExists(t, filepath.Join(out, "first.txt"))
}

func TestRun_BatchRejectsMalformedLine(t *testing.T) {
	_, global := globalArgs(t)

	list := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("https://a.example/ name extra\n"), 0o600))

	_, _, err := run(t, append([]string{"batch", list}, global...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch line 1")
}

func TestRun_ConfigFileAndEnvLayering(t *testing.T) {
	srv := newSite(t)
	t.Setenv("PAGETEXT_OUTPUT_DIR", "")
	dir := t.TempDir()
	font := filepath.Join(dir, "absent.ttf")

	cfgPath := filepath.Join(dir, "pagetext.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("output:\n  dir: %s\n  font: %s\n", filepath.Join(dir, "from-file"), font)), 0o600))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("PAGETEXT_OUTPUT_DIR="+filepath.Join(dir, "from-env")+"\n"), 0o600))

	stdout, _, err := run(t, "extract", srv.URL, "-f", "txt", "--config", cfgPath, "--env-file", envPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-env"), filepath.Dir(strings.TrimSpace(stdout)))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, main.ExitCode(fmt.Errorf("wrap: %w", weburl.ErrInvalidFilename)))
	assert.Equal(t, 3, main.ExitCode(&fetch.FetchError{URL: "https://a.example", StatusCode: 500}))
	assert.Equal(t, 1, main.ExitCode(errors.New("disk full")))
	assert.Equal(t, 1, main.ExitCode(document.ErrFontUnavailable))
}
