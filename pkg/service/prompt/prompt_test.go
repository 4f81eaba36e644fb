package prompt_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/prompt"
)

func result(score float64, text string, createdAt time.Time) *model.QueryResult {
	return &model.QueryResult{
		Score: score,
		Chunk: &model.Chunk{
			Hash:      types.NewContentHash(text),
			Text:      text,
			Source:    "chat",
			CreatedAt: createdAt,
		},
	}
}

func TestApplyBudgetCapsChunkCount(t *testing.T) {
	now := time.Now()
	results := []*model.QueryResult{
		result(0.5, "low", now),
		result(0.9, "high", now),
		result(0.7, "mid", now),
	}

	trimmed, _ := prompt.ApplyBudget(results, nil, model.Budget{MaxRetrievedChunks: 2})
	gt.Array(t, trimmed).Length(2)
	gt.Value(t, trimmed[0].Chunk.Text).Equal("high")
	gt.Value(t, trimmed[1].Chunk.Text).Equal("mid")
}

func TestApplyBudgetCapsContextChars(t *testing.T) {
	now := time.Now()
	results := []*model.QueryResult{
		result(0.9, strings.Repeat("a", 40), now),
		result(0.8, strings.Repeat("b", 40), now),
		result(0.7, strings.Repeat("c", 40), now),
	}

	trimmed, _ := prompt.ApplyBudget(results, nil, model.Budget{MaxContextChars: 90})
	gt.Array(t, trimmed).Length(2)
	gt.Value(t, trimmed[0].Score).Equal(0.9)
	gt.Value(t, trimmed[1].Score).Equal(0.8)

	total := 0
	for _, r := range trimmed {
		total += len([]rune(r.Chunk.Text))
	}
	gt.B(t, total <= 90).True()
}

func TestApplyBudgetDropsWholeChunksOnly(t *testing.T) {
	now := time.Now()
	results := []*model.QueryResult{
		result(0.9, strings.Repeat("a", 100), now),
	}

	trimmed, _ := prompt.ApplyBudget(results, nil, model.Budget{MaxContextChars: 50})
	gt.Array(t, trimmed).Length(0)
}

func TestApplyBudgetTieBreakIsDeterministic(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	results := []*model.QueryResult{
		result(0.8, "older entry", older),
		result(0.8, "newer entry", newer),
	}

	for range 5 {
		trimmed, _ := prompt.ApplyBudget(results, nil, model.Budget{MaxRetrievedChunks: 1})
		gt.Array(t, trimmed).Length(1)
		gt.Value(t, trimmed[0].Chunk.Text).Equal("newer entry")
	}
}

func TestApplyBudgetKeepsNewestHistory(t *testing.T) {
	history := make([]model.ChatMessage, 5)
	for i := range history {
		history[i] = model.ChatMessage{Content: fmt.Sprintf("msg-%d", i)}
	}

	_, kept := prompt.ApplyBudget(nil, history, model.Budget{MaxHistoryMessages: 2})
	gt.Array(t, kept).Length(2)
	gt.Value(t, kept[0].Content).Equal("msg-3")
	gt.Value(t, kept[1].Content).Equal("msg-4")
}

func TestApplyBudgetZeroLimitsDisableCaps(t *testing.T) {
	now := time.Now()
	results := []*model.QueryResult{
		result(0.9, "one", now),
		result(0.8, "two", now),
	}
	history := []model.ChatMessage{{Content: "a"}, {Content: "b"}}

	trimmed, kept := prompt.ApplyBudget(results, history, model.Budget{})
	gt.Array(t, trimmed).Length(2)
	gt.Array(t, kept).Length(2)
}

func TestCitationsRenderAndAreStable(t *testing.T) {
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	results := []*model.QueryResult{
		{Score: 0.9, Chunk: &model.Chunk{Source: "https://example.com/post", CreatedAt: created, Author: "alice"}},
		{Score: 0.8, Chunk: &model.Chunk{Source: "notes.txt"}},
	}

	first := prompt.Citations(results)
	gt.Array(t, first).Length(2)
	gt.Value(t, first[0]).Equal("[1] https://example.com/post — alice (2024-03-15T10:30:00Z)")
	gt.Value(t, first[1]).Equal("[2] notes.txt")

	second := prompt.Citations(results)
	gt.Value(t, second).Equal(first)
}

func TestAssembleOrderingAndMarkers(t *testing.T) {
	results := []*model.QueryResult{
		{Score: 0.9, Chunk: &model.Chunk{Text: "the tower is 330m tall"}},
		{Score: 0.8, Chunk: &model.Chunk{Text: "built in 1889"}},
	}
	history := []model.ChatMessage{
		{Author: "bob", Content: "anyone been to Paris?"},
		{Bot: true, Content: "I have not, but I hear it is lovely."},
	}

	messages := prompt.Assemble(results, "You are a travel guide.", history, "How tall is the Eiffel Tower?")
	gt.Array(t, messages).Length(5)

	gt.Value(t, messages[0].Role).Equal(model.RoleSystem)
	gt.B(t, strings.Contains(messages[0].Content, "[1] the tower is 330m tall")).True()
	gt.B(t, strings.Contains(messages[0].Content, "[2] built in 1889")).True()

	gt.Value(t, messages[1].Role).Equal(model.RoleSystem)
	gt.Value(t, messages[1].Content).Equal("You are a travel guide.")

	gt.Value(t, messages[2].Role).Equal(model.RoleUser)
	gt.Value(t, messages[2].Content).Equal("bob: anyone been to Paris?")
	gt.Value(t, messages[3].Role).Equal(model.RoleAssistant)

	gt.Value(t, messages[4].Role).Equal(model.RoleUser)
	gt.Value(t, messages[4].Content).Equal("How tall is the Eiffel Tower?")
}

func TestAssembleSkipsEmptyBlocks(t *testing.T) {
	messages := prompt.Assemble(nil, "", nil, "hello")
	gt.Array(t, messages).Length(1)
	gt.Value(t, messages[0].Role).Equal(model.RoleUser)
	gt.Value(t, messages[0].Content).Equal("hello")
}
