package usecase

import (
	"context"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
	"github.com/bz-cogs/aiuser-rag/pkg/service/reader"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

// URLFetcher yields extracted article text for a URL
type URLFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*reader.Document, error)
}

// FileReader yields extracted text for a local file
type FileReader func(path string) (*reader.Document, error)

// UseCases wires the retrieval pipeline together: store, embedder and
// generator are the three external backends every operation composes.
type UseCases struct {
	store     interfaces.VectorStore
	embedder  interfaces.Embedder
	generator interfaces.Generator
	urls      URLFetcher
	files     FileReader
}

type Option func(*UseCases)

// WithURLFetcher replaces the default URL reader
func WithURLFetcher(f URLFetcher) Option {
	return func(uc *UseCases) {
		uc.urls = f
	}
}

// WithFileReader replaces the default file reader
func WithFileReader(f FileReader) Option {
	return func(uc *UseCases) {
		uc.files = f
	}
}

func New(store interfaces.VectorStore, embedder interfaces.Embedder, generator interfaces.Generator, opts ...Option) *UseCases {
	uc := &UseCases{
		store:     store,
		embedder:  embedder,
		generator: generator,
		urls:      reader.NewURLReader(),
		files:     reader.ReadFile,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ensureCollection aligns the collection with the embedding model's
// dimension. Recreation drops every stored vector, so it is logged
// loudly rather than handled silently.
func (uc *UseCases) ensureCollection(ctx context.Context) error {
	dimension, err := uc.embedder.Dimension(ctx)
	if err != nil {
		return err
	}

	recreated, err := uc.store.EnsureCollection(ctx, dimension)
	if err != nil {
		return err
	}
	if recreated {
		logging.From(ctx).Warn("embedding dimension changed; collection was recreated and previous memory dropped",
			"dimension", dimension)
	}
	return nil
}
