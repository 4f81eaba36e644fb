package usecase

import (
	"context"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/prompt"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

// QueryInput is one complete question against indexed memory. All
// tuning values travel with the call so a config change takes effect
// on the next query without restart.
type QueryInput struct {
	Prompt    string
	History   []model.ChatMessage
	Persona   string
	Retrieval model.RetrievalParams
	Budget    model.Budget
}

// QueryOutput is the generated answer plus the retrieval evidence that
// backed it
type QueryOutput struct {
	Answer    string
	Citations []string
	Retained  []*model.QueryResult
}

// Search embeds the prompt and returns ranked hits at or above the
// score threshold. An empty result is a normal outcome, not an error.
func (uc *UseCases) Search(ctx context.Context, query string, params model.RetrievalParams) ([]*model.QueryResult, error) {
	vectors, err := uc.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	results, err := uc.store.Search(ctx, vectors[0], params.TopK, params.MinScore, params.Filter)
	if err != nil {
		return nil, err
	}

	// The store converges duplicates by construction; drop repeats
	// anyway in case of a half-migrated collection
	seen := make(map[types.ContentHash]bool, len(results))
	deduped := results[:0]
	for _, r := range results {
		if seen[r.Chunk.Hash] {
			continue
		}
		seen[r.Chunk.Hash] = true
		deduped = append(deduped, r)
	}
	return deduped, nil
}

// Query runs the full pipeline: retrieve, budget, cite, assemble,
// generate. With no hits above the threshold, generation proceeds
// without a context block.
func (uc *UseCases) Query(ctx context.Context, in *QueryInput) (*QueryOutput, error) {
	results, err := uc.Search(ctx, in.Prompt, in.Retrieval)
	if err != nil {
		return nil, err
	}

	retained, history := prompt.ApplyBudget(results, in.History, in.Budget)
	citations := prompt.Citations(retained)
	messages := prompt.Assemble(retained, in.Persona, history, in.Prompt)

	logging.From(ctx).Debug("prompt assembled",
		"candidates", len(results),
		"retained", len(retained),
		"history", len(history))

	answer, err := uc.generator.Generate(ctx, messages, in.Budget.MaxResponseTokens)
	if err != nil {
		return nil, err
	}

	return &QueryOutput{
		Answer:    answer,
		Citations: citations,
		Retained:  retained,
	}, nil
}
