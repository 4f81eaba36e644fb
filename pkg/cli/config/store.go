package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
	"github.com/bz-cogs/aiuser-rag/pkg/repository/memory"
	"github.com/bz-cogs/aiuser-rag/pkg/repository/qdrant"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

// Store holds CLI flags for the vector store backend
type Store struct {
	backend    string
	url        string
	apiKey     string
	collection string
}

// Flags returns CLI flags for vector store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Vector store backend (qdrant or memory)",
			Value:       "qdrant",
			Sources:     cli.EnvVars("AIUSER_STORE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "qdrant-url",
			Usage:       "Qdrant base URL",
			Value:       "http://localhost:6333",
			Sources:     cli.EnvVars("AIUSER_QDRANT_URL"),
			Destination: &s.url,
		},
		&cli.StringFlag{
			Name:        "qdrant-api-key",
			Usage:       "Qdrant API key (optional)",
			Sources:     cli.EnvVars("AIUSER_QDRANT_API_KEY"),
			Destination: &s.apiKey,
		},
		&cli.StringFlag{
			Name:        "qdrant-collection",
			Usage:       "Qdrant collection name",
			Value:       "aiuser_memory",
			Sources:     cli.EnvVars("AIUSER_QDRANT_COLLECTION"),
			Destination: &s.collection,
		},
	}
}

// Configure builds the vector store for the configured backend
func (s *Store) Configure() (interfaces.VectorStore, error) {
	switch s.backend {
	case "qdrant", "":
		client, err := qdrant.New(s.url, s.collection, qdrant.WithAPIKey(s.apiKey))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize qdrant client")
		}
		logging.Default().Info("Using Qdrant vector store",
			"url", s.url,
			"collection", s.collection,
		)
		return client, nil

	case "memory":
		logging.Default().Info("Using in-memory vector store (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", s.backend))
	}
}
