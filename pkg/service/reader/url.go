package reader

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// maxExtractedChars caps how much article text one URL contributes.
// Long pages are truncated, never rejected.
const maxExtractedChars = 20000

const userAgent = "Mozilla/5.0 (compatible; aiuser-rag/1.0)"

// Document is extracted source material ready for ingestion
type Document struct {
	Title  string
	Text   string
	Source string
}

// URLReader fetches web pages and extracts their readable article text
type URLReader struct {
	client  *http.Client
	maxSize int
}

// NewURLReader creates a URLReader with a bounded request timeout
func NewURLReader() *URLReader {
	return &URLReader{
		client:  &http.Client{Timeout: 30 * time.Second},
		maxSize: maxExtractedChars,
	}
}

// Fetch downloads the page and distills it to plain article text.
// Network failures and non-2xx responses surface as
// types.ErrUnreachableSource.
func (r *URLReader) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "invalid URL", goerr.V("url", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "failed to build request", goerr.V("url", rawURL))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "request failed",
			goerr.V("url", rawURL), goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "unexpected status",
			goerr.V("url", rawURL), goerr.V("status", resp.StatusCode))
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "failed to extract article",
			goerr.V("url", rawURL), goerr.V("cause", err.Error()))
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, goerr.Wrap(types.ErrUnreachableSource, "page has no readable text",
			goerr.V("url", rawURL))
	}
	if runes := []rune(text); len(runes) > r.maxSize {
		text = string(runes[:r.maxSize])
	}

	return &Document{
		Title:  article.Title,
		Text:   text,
		Source: rawURL,
	}, nil
}
