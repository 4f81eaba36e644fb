package prompt

import (
	"sort"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// ApplyBudget trims retrieval results and chat history to the given
// limits. Trimming is whole-chunk only; a partially included chunk
// would produce a citation pointing at text the model never saw.
//
// The order is fixed:
//  1. cap the result count to MaxRetrievedChunks, keeping highest
//     scores,
//  2. drop the lowest-scoring results until the concatenated chunk
//     text fits MaxContextChars,
//  3. keep only the most recent MaxHistoryMessages, in chronological
//     order.
//
// A zero limit disables that cap. MaxResponseTokens is not enforced
// here; it rides along to the generation call.
func ApplyBudget(results []*model.QueryResult, history []model.ChatMessage, budget model.Budget) ([]*model.QueryResult, []model.ChatMessage) {
	trimmed := make([]*model.QueryResult, len(results))
	copy(trimmed, results)
	sortByRelevance(trimmed)

	if budget.MaxRetrievedChunks > 0 && len(trimmed) > budget.MaxRetrievedChunks {
		trimmed = trimmed[:budget.MaxRetrievedChunks]
	}

	if budget.MaxContextChars > 0 {
		total := 0
		keep := 0
		for _, r := range trimmed {
			n := len([]rune(r.Chunk.Text))
			if total+n > budget.MaxContextChars {
				break
			}
			total += n
			keep++
		}
		trimmed = trimmed[:keep]
	}

	kept := history
	if budget.MaxHistoryMessages > 0 && len(kept) > budget.MaxHistoryMessages {
		kept = kept[len(kept)-budget.MaxHistoryMessages:]
	}

	return trimmed, kept
}

// sortByRelevance orders results by score descending. Equal scores at
// a truncation boundary must drop deterministically, so ties fall back
// to recency (newer first) and then content hash.
func sortByRelevance(results []*model.QueryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		at, bt := recency(a.Chunk), recency(b.Chunk)
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return a.Chunk.Hash < b.Chunk.Hash
	})
}

func recency(c *model.Chunk) time.Time {
	if !c.CreatedAt.IsZero() {
		return c.CreatedAt
	}
	return c.LastSeen
}
