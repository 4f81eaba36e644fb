package usecase

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
)

// exportRecord is one JSONL line of an export. Vectors are omitted;
// re-importing goes through the normal ingestion path, which re-embeds.
type exportRecord struct {
	ContentHash string   `json:"content_hash"`
	Text        string   `json:"text"`
	Source      string   `json:"source"`
	Sources     []string `json:"sources"`
	FirstSeen   string   `json:"first_seen"`
	LastSeen    string   `json:"last_seen"`
	GuildID     int64    `json:"guild_id,omitempty"`
	ChannelID   int64    `json:"channel_id,omitempty"`
	Author      string   `json:"author,omitempty"`
	AuthorID    int64    `json:"author_id,omitempty"`
	MessageID   int64    `json:"message_id,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// Export streams every chunk matching the filter as JSON lines and
// returns how many records were written.
func (uc *UseCases) Export(ctx context.Context, w io.Writer, filter model.SearchFilter) (int, error) {
	encoder := json.NewEncoder(w)
	written := 0

	err := uc.store.Scroll(ctx, filter, func(c *model.Chunk) error {
		record := exportRecord{
			ContentHash: c.Hash.String(),
			Text:        c.Text,
			Source:      c.Source,
			Sources:     c.Sources,
			FirstSeen:   c.FirstSeen.UTC().Format(time.RFC3339),
			LastSeen:    c.LastSeen.UTC().Format(time.RFC3339),
			GuildID:     int64(c.GuildID),
			ChannelID:   int64(c.ChannelID),
			Author:      c.Author,
			AuthorID:    int64(c.AuthorID),
			MessageID:   int64(c.MessageID),
		}
		if !c.CreatedAt.IsZero() {
			record.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := encoder.Encode(record); err != nil {
			return goerr.Wrap(err, "failed to write export record", goerr.V("content_hash", c.Hash))
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}
	return written, nil
}
