package config

import (
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// Budget holds CLI flags for retrieval and prompt-size limits. Values
// are read per invocation and passed through to each call, never
// cached, so a config change applies to the next run.
type Budget struct {
	topK               int
	minScore           float64
	maxContextChars    int
	maxHistoryMessages int
	maxRetrievedChunks int
	maxResponseTokens  int
	chunkSize          int
	chunkOverlap       int
}

// Flags returns CLI flags for budget configuration
func (b *Budget) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Number of nearest neighbors to retrieve",
			Value:       5,
			Sources:     cli.EnvVars("AIUSER_TOP_K"),
			Destination: &b.topK,
		},
		&cli.FloatFlag{
			Name:        "min-score",
			Usage:       "Minimum similarity score for a hit to be used",
			Value:       0.7,
			Sources:     cli.EnvVars("AIUSER_MIN_SCORE"),
			Destination: &b.minScore,
		},
		&cli.IntFlag{
			Name:        "max-context-chars",
			Usage:       "Character cap on concatenated context chunks",
			Value:       4000,
			Sources:     cli.EnvVars("AIUSER_MAX_CONTEXT_CHARS"),
			Destination: &b.maxContextChars,
		},
		&cli.IntFlag{
			Name:        "max-history-messages",
			Usage:       "Most recent history messages to keep in the prompt",
			Value:       10,
			Sources:     cli.EnvVars("AIUSER_MAX_HISTORY_MESSAGES"),
			Destination: &b.maxHistoryMessages,
		},
		&cli.IntFlag{
			Name:        "max-retrieved-chunks",
			Usage:       "Cap on retrieved chunks entering the prompt",
			Value:       5,
			Sources:     cli.EnvVars("AIUSER_MAX_RETRIEVED_CHUNKS"),
			Destination: &b.maxRetrievedChunks,
		},
		&cli.IntFlag{
			Name:        "max-response-tokens",
			Usage:       "Token cap passed to the generation call",
			Value:       512,
			Sources:     cli.EnvVars("AIUSER_MAX_RESPONSE_TOKENS"),
			Destination: &b.maxResponseTokens,
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Maximum characters per ingested chunk",
			Value:       1200,
			Sources:     cli.EnvVars("AIUSER_CHUNK_SIZE"),
			Destination: &b.chunkSize,
		},
		&cli.IntFlag{
			Name:        "chunk-overlap",
			Usage:       "Characters shared by consecutive chunks",
			Value:       120,
			Sources:     cli.EnvVars("AIUSER_CHUNK_OVERLAP"),
			Destination: &b.chunkOverlap,
		},
	}
}

// Budget returns the prompt-size limits
func (b *Budget) Budget() model.Budget {
	return model.Budget{
		MaxContextChars:    b.maxContextChars,
		MaxHistoryMessages: b.maxHistoryMessages,
		MaxRetrievedChunks: b.maxRetrievedChunks,
		MaxResponseTokens:  b.maxResponseTokens,
	}
}

// Retrieval returns the retrieval parameters without a scope filter
func (b *Budget) Retrieval() model.RetrievalParams {
	return model.RetrievalParams{
		TopK:     b.topK,
		MinScore: b.minScore,
	}
}

// Chunking returns the chunking parameters
func (b *Budget) Chunking() model.ChunkingParams {
	return model.ChunkingParams{
		MaxChunkSize: b.chunkSize,
		Overlap:      b.chunkOverlap,
	}
}
