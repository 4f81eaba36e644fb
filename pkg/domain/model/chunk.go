package model

import (
	"slices"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// Chunk is the unit persisted in the vector store. Identity is the
// content hash of the normalized (case-folded) text; Text keeps the
// whitespace-collapsed form with original casing for display.
// Chat-origin fields (Author, AuthorID, MessageID, CreatedAt) are zero
// for URL and file origins.
type Chunk struct {
	Hash      types.ContentHash
	Text      string
	Source    string
	Sources   []string // union of all origins that produced this content, sorted
	FirstSeen time.Time
	LastSeen  time.Time

	GuildID   types.GuildID
	ChannelID types.ChannelID

	Author    string
	AuthorID  types.AuthorID
	MessageID types.MessageID
	CreatedAt time.Time

	Vector []float32
}

// PointID returns the vector store point ID derived from the hash
func (c *Chunk) PointID() string {
	return c.Hash.PointID()
}

// Merge records a duplicate sighting of the same content: the source
// set grows (union only) and LastSeen advances if the new sighting is
// later. FirstSeen, Text and Vector are never touched.
func (c *Chunk) Merge(source string, seenAt time.Time) {
	if source != "" && !slices.Contains(c.Sources, source) {
		c.Sources = append(c.Sources, source)
		slices.Sort(c.Sources)
	}
	if seenAt.After(c.LastSeen) {
		c.LastSeen = seenAt.UTC()
	}
}

// Clone returns a deep copy of the chunk
func (c *Chunk) Clone() *Chunk {
	copied := *c
	if c.Sources != nil {
		copied.Sources = make([]string, len(c.Sources))
		copy(copied.Sources, c.Sources)
	}
	if c.Vector != nil {
		copied.Vector = make([]float32, len(c.Vector))
		copy(copied.Vector, c.Vector)
	}
	return &copied
}

// QueryResult is a chunk paired with its similarity score. It is
// produced by search only and never persisted.
type QueryResult struct {
	Chunk *Chunk
	Score float64
}

// SearchFilter restricts search and export to matching chunks. Zero
// fields are ignored; set fields are AND-combined.
type SearchFilter struct {
	GuildID   types.GuildID
	ChannelID types.ChannelID
	AuthorID  types.AuthorID
}

// Matches reports whether the chunk satisfies every set condition
func (f SearchFilter) Matches(c *Chunk) bool {
	if f.GuildID != 0 && c.GuildID != f.GuildID {
		return false
	}
	if f.ChannelID != 0 && c.ChannelID != f.ChannelID {
		return false
	}
	if f.AuthorID != 0 && c.AuthorID != f.AuthorID {
		return false
	}
	return true
}

// PurgeFilter selects chunks for deletion. Zero fields are ignored.
// MessageIDs are OR-combined with each other and AND-combined with the
// rest, so an author guard limits deletion to that author's messages.
type PurgeFilter struct {
	GuildID    types.GuildID
	ChannelID  types.ChannelID
	AuthorID   types.AuthorID
	MessageIDs []types.MessageID
	Before     time.Time
	After      time.Time
}

// IsZero reports whether no condition is set. Stores must reject a
// zero filter: purging everything requires an explicit guild scope.
func (f PurgeFilter) IsZero() bool {
	return f.GuildID == 0 && f.ChannelID == 0 && f.AuthorID == 0 &&
		len(f.MessageIDs) == 0 && f.Before.IsZero() && f.After.IsZero()
}

// Matches reports whether the chunk satisfies every set condition
func (f PurgeFilter) Matches(c *Chunk) bool {
	if f.GuildID != 0 && c.GuildID != f.GuildID {
		return false
	}
	if f.ChannelID != 0 && c.ChannelID != f.ChannelID {
		return false
	}
	if f.AuthorID != 0 && c.AuthorID != f.AuthorID {
		return false
	}
	if len(f.MessageIDs) > 0 && !slices.Contains(f.MessageIDs, c.MessageID) {
		return false
	}
	if !f.Before.IsZero() && (c.CreatedAt.IsZero() || c.CreatedAt.After(f.Before)) {
		return false
	}
	if !f.After.IsZero() && (c.CreatedAt.IsZero() || c.CreatedAt.Before(f.After)) {
		return false
	}
	return true
}
