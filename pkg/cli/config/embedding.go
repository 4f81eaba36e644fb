package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/service/embedding"
)

// Embedding holds CLI flags for the embedding backend
type Embedding struct {
	endpoint    string
	apiKey      string
	model       string
	batchSize   int
	concurrency int
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-endpoint",
			Usage:       "OpenAI-compatible embeddings endpoint",
			Value:       "http://localhost:11434/v1",
			Sources:     cli.EnvVars("AIUSER_EMBEDDING_ENDPOINT"),
			Destination: &e.endpoint,
		},
		&cli.StringFlag{
			Name:        "embedding-api-key",
			Usage:       "API key for the embeddings endpoint",
			Sources:     cli.EnvVars("AIUSER_EMBEDDING_API_KEY"),
			Destination: &e.apiKey,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Value:       "nomic-embed-text",
			Sources:     cli.EnvVars("AIUSER_EMBEDDING_MODEL"),
			Destination: &e.model,
		},
		&cli.IntFlag{
			Name:        "embedding-batch-size",
			Usage:       "Texts per embeddings request",
			Value:       32,
			Sources:     cli.EnvVars("AIUSER_EMBEDDING_BATCH_SIZE"),
			Destination: &e.batchSize,
		},
		&cli.IntFlag{
			Name:        "embedding-concurrency",
			Usage:       "Concurrent embeddings requests per batch",
			Value:       4,
			Sources:     cli.EnvVars("AIUSER_EMBEDDING_CONCURRENCY"),
			Destination: &e.concurrency,
		},
	}
}

// Configure builds the embedding client
func (e *Embedding) Configure() (*embedding.Client, error) {
	client, err := embedding.New(e.endpoint, e.apiKey, e.model,
		embedding.WithBatchSize(e.batchSize),
		embedding.WithConcurrency(e.concurrency),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize embedding client")
	}
	return client, nil
}
