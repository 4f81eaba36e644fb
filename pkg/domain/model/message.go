package model

import (
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// ChatMessage is a chat-platform message handed to the ingestion entry
// point or carried as recent history in a query. The platform
// connector that produces these is an external collaborator.
type ChatMessage struct {
	GuildID   types.GuildID   `json:"guild_id,omitempty"`
	ChannelID types.ChannelID `json:"channel_id,omitempty"`
	Author    string          `json:"author,omitempty"`
	AuthorID  types.AuthorID  `json:"author_id,omitempty"`
	MessageID types.MessageID `json:"message_id,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	Content   string          `json:"content"`
	Bot       bool            `json:"bot,omitempty"`
}

// IngestStatus is the per-item outcome of a batch ingestion. One bad
// item never aborts the rest of the batch.
type IngestStatus struct {
	Source    string
	MessageID types.MessageID
	Added     int
	Merged    int
	Err       error
}

// IngestReport summarizes a whole ingestion batch
type IngestReport struct {
	Scanned int
	Skipped int
	Added   int
	Merged  int
	Items   []IngestStatus
}

// Failed returns the statuses of items that could not be ingested
func (r *IngestReport) Failed() []IngestStatus {
	var failed []IngestStatus
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}
