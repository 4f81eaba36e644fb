package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

const scrollBatchSize = 256

func (c *Client) Insert(ctx context.Context, chunk *model.Chunk) error {
	if err := chunk.Hash.Validate(); err != nil {
		return err
	}
	if len(chunk.Vector) == 0 {
		return goerr.New("chunk has no vector", goerr.V("content_hash", chunk.Hash))
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":      chunk.PointID(),
			"vector":  chunk.Vector,
			"payload": toPayload(chunk),
		}},
	}
	return c.do(ctx, http.MethodPut, c.collectionPath("/points?wait=true"), body, nil)
}

func (c *Client) Lookup(ctx context.Context, hash types.ContentHash) (*model.Chunk, error) {
	if err := hash.Validate(); err != nil {
		return nil, err
	}

	body := map[string]any{
		"ids":          []string{hash.PointID()},
		"with_payload": true,
		"with_vector":  false,
	}
	var result []struct {
		Payload chunkPayload `json:"payload"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/points"), body, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, goerr.Wrap(types.ErrNotFound, "chunk not found", goerr.V("content_hash", hash))
	}
	return result[0].Payload.toChunk()
}

// MergeMetadata unions the source into the stored payload and advances
// last_seen. The merge is computed client-side from a fresh read and
// written with a payload-set call, so the vector is never rewritten.
func (c *Client) MergeMetadata(ctx context.Context, hash types.ContentHash, source string, seenAt time.Time) error {
	chunk, err := c.Lookup(ctx, hash)
	if err != nil {
		return err
	}
	chunk.Merge(source, seenAt)

	body := map[string]any{
		"points": []string{hash.PointID()},
		"payload": map[string]any{
			"sources":   chunk.Sources,
			"last_seen": chunk.LastSeen.UTC().Format(time.RFC3339),
		},
	}
	return c.do(ctx, http.MethodPost, c.collectionPath("/points/payload?wait=true"), body, nil)
}

func (c *Client) Search(ctx context.Context, vector []float32, k int, minScore float64, filter model.SearchFilter) ([]*model.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if minScore > 0 {
		body["score_threshold"] = minScore
	}
	if conditions := searchConditions(filter); len(conditions) > 0 {
		body["filter"] = map[string]any{"must": conditions}
	}

	var hits []struct {
		Score   float64      `json:"score"`
		Payload chunkPayload `json:"payload"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/points/search"), body, &hits); err != nil {
		return nil, err
	}

	results := make([]*model.QueryResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := hit.Payload.toChunk()
		if err != nil {
			return nil, err
		}
		results = append(results, &model.QueryResult{Chunk: chunk, Score: hit.Score})
	}
	return results, nil
}

// DeleteByFilter counts the matching points first; Qdrant's delete
// call does not report how many points it removed.
func (c *Client) DeleteByFilter(ctx context.Context, filter model.PurgeFilter) (int, error) {
	if filter.IsZero() {
		return 0, goerr.New("refusing to purge with an empty filter")
	}

	qf := map[string]any{"must": purgeConditions(filter)}

	var counted struct {
		Count int `json:"count"`
	}
	countBody := map[string]any{"filter": qf, "exact": true}
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/points/count"), countBody, &counted); err != nil {
		return 0, err
	}
	if counted.Count == 0 {
		return 0, nil
	}

	deleteBody := map[string]any{"filter": qf}
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/points/delete?wait=true"), deleteBody, nil); err != nil {
		return 0, err
	}
	return counted.Count, nil
}

func (c *Client) Scroll(ctx context.Context, filter model.SearchFilter, fn func(*model.Chunk) error) error {
	var offset json.RawMessage
	for {
		body := map[string]any{
			"limit":        scrollBatchSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if conditions := searchConditions(filter); len(conditions) > 0 {
			body["filter"] = map[string]any{"must": conditions}
		}
		if offset != nil {
			body["offset"] = offset
		}

		var page struct {
			Points []struct {
				Payload chunkPayload `json:"payload"`
			} `json:"points"`
			NextPageOffset json.RawMessage `json:"next_page_offset"`
		}
		if err := c.do(ctx, http.MethodPost, c.collectionPath("/points/scroll"), body, &page); err != nil {
			return err
		}

		for _, point := range page.Points {
			chunk, err := point.Payload.toChunk()
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}

		if len(page.NextPageOffset) == 0 || string(page.NextPageOffset) == "null" {
			return nil
		}
		offset = page.NextPageOffset
	}
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var counted struct {
		Count int `json:"count"`
	}
	body := map[string]any{"exact": true}
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/points/count"), body, &counted); err != nil {
		return 0, err
	}
	return counted.Count, nil
}

func matchCondition(key string, value any) map[string]any {
	return map[string]any{"key": key, "match": map[string]any{"value": value}}
}

func searchConditions(f model.SearchFilter) []map[string]any {
	var conditions []map[string]any
	if f.GuildID != 0 {
		conditions = append(conditions, matchCondition("guild_id", int64(f.GuildID)))
	}
	if f.ChannelID != 0 {
		conditions = append(conditions, matchCondition("channel_id", int64(f.ChannelID)))
	}
	if f.AuthorID != 0 {
		conditions = append(conditions, matchCondition("author_id", int64(f.AuthorID)))
	}
	return conditions
}

func purgeConditions(f model.PurgeFilter) []map[string]any {
	var conditions []map[string]any
	if f.GuildID != 0 {
		conditions = append(conditions, matchCondition("guild_id", int64(f.GuildID)))
	}
	if f.ChannelID != 0 {
		conditions = append(conditions, matchCondition("channel_id", int64(f.ChannelID)))
	}
	if f.AuthorID != 0 {
		conditions = append(conditions, matchCondition("author_id", int64(f.AuthorID)))
	}
	if len(f.MessageIDs) > 0 {
		ids := make([]int64, len(f.MessageIDs))
		for i, id := range f.MessageIDs {
			ids[i] = int64(id)
		}
		conditions = append(conditions, map[string]any{
			"key":   "message_id",
			"match": map[string]any{"any": ids},
		})
	}
	if !f.Before.IsZero() || !f.After.IsZero() {
		rangeCond := map[string]any{}
		if !f.Before.IsZero() {
			rangeCond["lte"] = f.Before.Unix()
		}
		if !f.After.IsZero() {
			rangeCond["gte"] = f.After.Unix()
		}
		conditions = append(conditions, map[string]any{
			"key":   "created_at_ts",
			"range": rangeCond,
		})
	}
	return conditions
}
