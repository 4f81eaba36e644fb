package prompt

import (
	"fmt"
	"strings"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

const contextHeader = "Relevant context retrieved from memory. Cite facts with their [n] marker:"

// Assemble builds the ordered message list for the chat model:
// a context system block (only when results remain after budgeting), a
// persona system block (opaque pre-rendered text, may be empty), the
// trimmed history and finally the user's prompt. Nothing is truncated
// here; ApplyBudget already did all trimming.
func Assemble(results []*model.QueryResult, persona string, history []model.ChatMessage, userPrompt string) []model.PromptMessage {
	messages := make([]model.PromptMessage, 0, len(history)+3)

	if len(results) > 0 {
		var sb strings.Builder
		sb.WriteString(contextHeader)
		for i, r := range results {
			fmt.Fprintf(&sb, "\n\n[%d] %s", i+1, r.Chunk.Text)
		}
		messages = append(messages, model.PromptMessage{
			Role:    model.RoleSystem,
			Content: sb.String(),
		})
	}

	if persona != "" {
		messages = append(messages, model.PromptMessage{
			Role:    model.RoleSystem,
			Content: persona,
		})
	}

	for _, h := range history {
		role := model.RoleUser
		if h.Bot {
			role = model.RoleAssistant
		}
		content := h.Content
		if h.Author != "" && !h.Bot {
			content = h.Author + ": " + h.Content
		}
		messages = append(messages, model.PromptMessage{
			Role:    role,
			Content: content,
		})
	}

	return append(messages, model.PromptMessage{
		Role:    model.RoleUser,
		Content: userPrompt,
	})
}
