package chunker

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// Splitter cuts whitespace-collapsed text into bounded, overlapping
// chunks. Boundaries prefer whitespace within a small lookback window;
// a hard mid-token cut is allowed when no usable boundary exists.
type Splitter struct {
	maxSize  int
	overlap  int
	lookback int
}

// NewSplitter validates the chunking parameters and returns a Splitter
func NewSplitter(p model.ChunkingParams) (*Splitter, error) {
	if p.MaxChunkSize <= 0 {
		return nil, goerr.New("max chunk size must be positive", goerr.V("maxChunkSize", p.MaxChunkSize))
	}
	if p.Overlap < 0 || p.Overlap >= p.MaxChunkSize {
		return nil, goerr.New("overlap must be smaller than max chunk size",
			goerr.V("overlap", p.Overlap), goerr.V("maxChunkSize", p.MaxChunkSize))
	}

	return &Splitter{
		maxSize:  p.MaxChunkSize,
		overlap:  p.Overlap,
		lookback: p.MaxChunkSize / 8,
	}, nil
}

// Split collapses whitespace in the text and cuts it into chunks of at
// most the configured size, with consecutive chunks sharing exactly
// the configured overlap. Casing survives the cut; case folding
// happens in Hash only. Empty or whitespace-only input yields no
// chunks.
func (s *Splitter) Split(text string) []string {
	collapsed := Collapse(text)
	if collapsed == "" {
		return nil
	}

	runes := []rune(collapsed)
	if len(runes) <= s.maxSize {
		return []string{collapsed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.maxSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.adjustBoundary(runes, start, end)
		}

		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - s.overlap
	}

	return chunks
}

// adjustBoundary moves the cut back to the nearest whitespace inside
// the lookback window. The adjusted chunk must remain longer than the
// overlap so the next chunk always makes forward progress.
func (s *Splitter) adjustBoundary(runes []rune, start, end int) int {
	limit := end - s.lookback
	if min := start + s.overlap + 1; limit < min {
		limit = min
	}
	for i := end - 1; i >= limit; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return end
}
