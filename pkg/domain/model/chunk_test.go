package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

func TestChunkMerge(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	c := &model.Chunk{
		Hash:      types.NewContentHash("the quick brown fox"),
		Text:      "The quick brown fox",
		Source:    "discord",
		Sources:   []string{"discord"},
		FirstSeen: first,
		LastSeen:  first,
		Vector:    []float32{0.1, 0.2},
	}

	c.Merge("https://example.com/article", later)

	gt.Array(t, c.Sources).Length(2).Has("discord").Has("https://example.com/article")
	gt.Value(t, c.LastSeen).Equal(later)
	gt.Value(t, c.FirstSeen).Equal(first)

	// Duplicate source does not grow the set, earlier sighting does not
	// rewind LastSeen
	c.Merge("discord", first)
	gt.Array(t, c.Sources).Length(2)
	gt.Value(t, c.LastSeen).Equal(later)
}

func TestChunkClone(t *testing.T) {
	c := &model.Chunk{
		Hash:    types.NewContentHash("text"),
		Sources: []string{"a"},
		Vector:  []float32{1, 2, 3},
	}

	clone := c.Clone()
	clone.Sources[0] = "b"
	clone.Vector[0] = 9

	gt.Value(t, c.Sources[0]).Equal("a")
	gt.Value(t, c.Vector[0]).Equal(float32(1))
}

func TestSearchFilterMatches(t *testing.T) {
	c := &model.Chunk{GuildID: 10, ChannelID: 20, AuthorID: 30}

	gt.B(t, model.SearchFilter{}.Matches(c)).True()
	gt.B(t, model.SearchFilter{GuildID: 10}.Matches(c)).True()
	gt.B(t, model.SearchFilter{GuildID: 10, ChannelID: 20, AuthorID: 30}.Matches(c)).True()
	gt.B(t, model.SearchFilter{GuildID: 11}.Matches(c)).False()
	gt.B(t, model.SearchFilter{GuildID: 10, AuthorID: 31}.Matches(c)).False()
}

func TestPurgeFilterMatches(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := &model.Chunk{GuildID: 10, AuthorID: 30, MessageID: 55, CreatedAt: created}

	gt.B(t, model.PurgeFilter{AuthorID: 30}.Matches(c)).True()
	gt.B(t, model.PurgeFilter{MessageIDs: []types.MessageID{55, 56}, AuthorID: 30}.Matches(c)).True()
	gt.B(t, model.PurgeFilter{MessageIDs: []types.MessageID{56}}.Matches(c)).False()
	gt.B(t, model.PurgeFilter{Before: created.Add(time.Hour)}.Matches(c)).True()
	gt.B(t, model.PurgeFilter{Before: created.Add(-time.Hour)}.Matches(c)).False()
	gt.B(t, model.PurgeFilter{After: created.Add(-time.Hour)}.Matches(c)).True()
	gt.B(t, model.PurgeFilter{After: created.Add(time.Hour)}.Matches(c)).False()

	// Chunks without a creation time never match a time-range purge
	urlChunk := &model.Chunk{GuildID: 10}
	gt.B(t, model.PurgeFilter{Before: created}.Matches(urlChunk)).False()

	gt.B(t, model.PurgeFilter{}.IsZero()).True()
	gt.B(t, model.PurgeFilter{GuildID: 1}.IsZero()).False()
}
