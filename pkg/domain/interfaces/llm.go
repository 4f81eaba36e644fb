package interfaces

import (
	"context"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// Embedder converts texts into fixed-dimension vectors
type Embedder interface {
	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector dimension of the active model so
	// the store can detect collection mismatches
	Dimension(ctx context.Context) (int, error)
}

// Generator produces a single non-streamed completion for an ordered
// message list. maxTokens caps the response length; zero means the
// backend default.
type Generator interface {
	Generate(ctx context.Context, messages []model.PromptMessage, maxTokens int) (string, error)
}
