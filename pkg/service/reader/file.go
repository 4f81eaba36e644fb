package reader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// ReadFile loads a plain-text document from disk. Only .txt and .md
// are supported; anything else (PDF, Word, images) yields
// types.ErrUnsupportedFormat so the caller can report the filename
// instead of indexing binary garbage.
func ReadFile(path string) (*Document, error) {
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		// supported
	default:
		return nil, goerr.Wrap(types.ErrUnsupportedFormat, "cannot extract text from file",
			goerr.V("filename", name))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("filename", name))
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, goerr.Wrap(types.ErrUnsupportedFormat, "file has no text content",
			goerr.V("filename", name))
	}
	if runes := []rune(text); len(runes) > maxExtractedChars {
		text = string(runes[:maxExtractedChars])
	}

	return &Document{
		Title:  name,
		Text:   text,
		Source: name,
	}, nil
}
