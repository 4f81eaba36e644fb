package reader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/reader"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<nav><a href="/">home</a> <a href="/about">about</a></nav>
<article>
<h1>Test Article</h1>
<p>The quick brown fox jumps over the lazy dog. This paragraph carries
the actual content of the page and should survive extraction.</p>
<p>A second paragraph with more substance, long enough that the
readability heuristics treat the article element as the main content
block of the document rather than boilerplate.</p>
</article>
<footer>copyright notice</footer>
</body>
</html>`

func TestFetchExtractsArticleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	doc, err := reader.NewURLReader().Fetch(context.Background(), srv.URL+"/post")
	gt.NoError(t, err).Required()

	gt.Value(t, doc.Source).Equal(srv.URL + "/post")
	gt.B(t, strings.Contains(doc.Text, "quick brown fox")).True()
	gt.B(t, strings.Contains(doc.Text, "copyright notice")).False()
}

func TestFetchUnreachableSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := reader.NewURLReader()

	_, err := r.Fetch(context.Background(), srv.URL+"/missing")
	gt.Error(t, err).Is(types.ErrUnreachableSource)

	_, err = r.Fetch(context.Background(), "ftp://example.com/file")
	gt.Error(t, err).Is(types.ErrUnreachableSource)

	_, err = r.Fetch(context.Background(), "http://127.0.0.1:1/nothing-listens-here")
	gt.Error(t, err).Is(types.ErrUnreachableSource)
}

func TestReadFileSupportedFormats(t *testing.T) {
	dir := t.TempDir()

	txtPath := filepath.Join(dir, "notes.txt")
	gt.NoError(t, os.WriteFile(txtPath, []byte("  some plain text notes\n"), 0o644))

	doc, err := reader.ReadFile(txtPath)
	gt.NoError(t, err).Required()
	gt.Value(t, doc.Text).Equal("some plain text notes")
	gt.Value(t, doc.Source).Equal("notes.txt")

	mdPath := filepath.Join(dir, "README.md")
	gt.NoError(t, os.WriteFile(mdPath, []byte("# Title\n\nbody"), 0o644))

	doc, err = reader.ReadFile(mdPath)
	gt.NoError(t, err).Required()
	gt.B(t, strings.Contains(doc.Text, "body")).True()
}

func TestReadFileUnsupportedFormats(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "report.pdf")
	gt.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644))

	_, err := reader.ReadFile(pdfPath)
	gt.Error(t, err).Is(types.ErrUnsupportedFormat)

	emptyPath := filepath.Join(dir, "empty.txt")
	gt.NoError(t, os.WriteFile(emptyPath, []byte("   \n"), 0o644))

	_, err = reader.ReadFile(emptyPath)
	gt.Error(t, err).Is(types.ErrUnsupportedFormat)
}
