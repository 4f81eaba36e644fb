package qdrant

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// chunkPayload is the point payload schema. Timestamps are stored
// twice: RFC3339 for humans and export, unix seconds for Qdrant range
// filters (retention purge needs a numeric field).
type chunkPayload struct {
	ContentHash string   `json:"content_hash"`
	Text        string   `json:"text"`
	Source      string   `json:"source"`
	Sources     []string `json:"sources"`
	FirstSeen   string   `json:"first_seen"`
	LastSeen    string   `json:"last_seen"`

	GuildID   int64 `json:"guild_id,omitempty"`
	ChannelID int64 `json:"channel_id,omitempty"`

	Author      string `json:"author,omitempty"`
	AuthorID    int64  `json:"author_id,omitempty"`
	MessageID   int64  `json:"message_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	CreatedAtTS int64  `json:"created_at_ts,omitempty"`
}

func toPayload(c *model.Chunk) chunkPayload {
	p := chunkPayload{
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
		p.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
		p.CreatedAtTS = c.CreatedAt.Unix()
	}
	return p
}

func (p chunkPayload) toChunk() (*model.Chunk, error) {
	hash := types.ContentHash(p.ContentHash)
	if err := hash.Validate(); err != nil {
		return nil, goerr.Wrap(err, "payload carries an invalid content hash")
	}

	c := &model.Chunk{
		Hash:      hash,
		Text:      p.Text,
		Source:    p.Source,
		Sources:   p.Sources,
		GuildID:   types.GuildID(p.GuildID),
		ChannelID: types.ChannelID(p.ChannelID),
		Author:    p.Author,
		AuthorID:  types.AuthorID(p.AuthorID),
		MessageID: types.MessageID(p.MessageID),
	}

	var err error
	if c.FirstSeen, err = parseTime(p.FirstSeen); err != nil {
		return nil, err
	}
	if c.LastSeen, err = parseTime(p.LastSeen); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(p.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "payload carries an invalid timestamp", goerr.V("value", s))
	}
	return ts.UTC(), nil
}
