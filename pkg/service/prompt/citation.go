package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// Citations renders a footnote line per retained result, numbered
// 1-based in input order. The input must already be budget-trimmed;
// numbering here is what the context block refers to, so the two must
// see the same sequence.
func Citations(results []*model.QueryResult) []string {
	footnotes := make([]string, 0, len(results))
	for i, r := range results {
		footnotes = append(footnotes, footnote(i+1, r.Chunk))
	}
	return footnotes
}

func footnote(n int, c *model.Chunk) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] %s", n, c.Source)
	if c.Author != "" {
		fmt.Fprintf(&sb, " — %s", c.Author)
	}
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, " (%s)", c.CreatedAt.UTC().Format(time.RFC3339))
	}
	return sb.String()
}
