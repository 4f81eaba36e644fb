package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/chunker"
	"github.com/bz-cogs/aiuser-rag/pkg/service/reader"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
)

// ingestBatch accumulates the per-batch state: statuses, the in-batch
// dedup map and the chunks awaiting embedding.
type ingestBatch struct {
	report  *model.IngestReport
	seen    map[types.ContentHash]*model.Chunk
	pending []pendingChunk
}

type pendingChunk struct {
	chunk *model.Chunk
	item  int // index into report.Items
}

func newIngestBatch() *ingestBatch {
	return &ingestBatch{
		report: &model.IngestReport{},
		seen:   make(map[types.ContentHash]*model.Chunk),
	}
}

// IngestMessages indexes a batch of chat messages. Bot, empty and
// emote-only messages are skipped; duplicate content merges with the
// existing record instead of storing twice. One failing item never
// aborts the rest of the batch, but an unavailable embedding backend
// fails the whole operation.
func (uc *UseCases) IngestMessages(ctx context.Context, messages []model.ChatMessage, params model.ChunkingParams) (*model.IngestReport, error) {
	splitter, err := chunker.NewSplitter(params)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureCollection(ctx); err != nil {
		return nil, err
	}

	batch := newIngestBatch()
	for _, msg := range messages {
		batch.report.Scanned++
		if msg.Bot || chunker.IsEmoteOnly(msg.Content) {
			batch.report.Skipped++
			continue
		}
		texts := splitter.Split(msg.Content)
		if len(texts) == 0 {
			batch.report.Skipped++
			continue
		}

		seenAt := msg.CreatedAt
		if seenAt.IsZero() {
			seenAt = time.Now()
		}
		template := &model.Chunk{
			Source:    "chat",
			FirstSeen: seenAt.UTC(),
			LastSeen:  seenAt.UTC(),
			GuildID:   msg.GuildID,
			ChannelID: msg.ChannelID,
			Author:    msg.Author,
			AuthorID:  msg.AuthorID,
			MessageID: msg.MessageID,
			CreatedAt: msg.CreatedAt,
		}
		status := model.IngestStatus{Source: "chat", MessageID: msg.MessageID}
		uc.ingestChunks(ctx, batch, texts, template, &status)
		batch.report.Items = append(batch.report.Items, status)
	}

	if err := uc.commitBatch(ctx, batch); err != nil {
		return batch.report, err
	}
	return batch.report, nil
}

// IngestURL fetches a web page, extracts its article text and indexes
// it under the URL as source.
func (uc *UseCases) IngestURL(ctx context.Context, rawURL string, params model.ChunkingParams) (*model.IngestReport, error) {
	doc, err := uc.urls.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return uc.ingestDocument(ctx, doc, params)
}

// IngestFile indexes a local plain-text or markdown file
func (uc *UseCases) IngestFile(ctx context.Context, path string, params model.ChunkingParams) (*model.IngestReport, error) {
	doc, err := uc.files(path)
	if err != nil {
		return nil, err
	}
	return uc.ingestDocument(ctx, doc, params)
}

func (uc *UseCases) ingestDocument(ctx context.Context, doc *reader.Document, params model.ChunkingParams) (*model.IngestReport, error) {
	splitter, err := chunker.NewSplitter(params)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureCollection(ctx); err != nil {
		return nil, err
	}

	batch := newIngestBatch()
	batch.report.Scanned = 1

	texts := splitter.Split(doc.Text)
	if len(texts) == 0 {
		batch.report.Skipped = 1
		return batch.report, nil
	}

	now := time.Now().UTC()
	template := &model.Chunk{
		Source:    doc.Source,
		FirstSeen: now,
		LastSeen:  now,
	}
	status := model.IngestStatus{Source: doc.Source}
	uc.ingestChunks(ctx, batch, texts, template, &status)
	batch.report.Items = append(batch.report.Items, status)

	if err := uc.commitBatch(ctx, batch); err != nil {
		return batch.report, err
	}
	return batch.report, nil
}

// ingestChunks resolves each chunk text against the in-batch map and
// the store: known content merges immediately, new content queues for
// embedding. Store failures are recorded per item.
func (uc *UseCases) ingestChunks(ctx context.Context, batch *ingestBatch, texts []string, template *model.Chunk, status *model.IngestStatus) {
	for _, text := range texts {
		hash := chunker.Hash(text)

		if inBatch, ok := batch.seen[hash]; ok {
			inBatch.Merge(template.Source, template.LastSeen)
			status.Merged++
			batch.report.Merged++
			continue
		}

		_, err := uc.store.Lookup(ctx, hash)
		switch {
		case err == nil:
			if mergeErr := uc.store.MergeMetadata(ctx, hash, template.Source, template.LastSeen); mergeErr != nil {
				status.Err = mergeErr
				continue
			}
			status.Merged++
			batch.report.Merged++

		case errors.Is(err, types.ErrNotFound):
			chunk := template.Clone()
			chunk.Hash = hash
			chunk.Text = text
			chunk.Sources = []string{template.Source}
			batch.seen[hash] = chunk
			batch.pending = append(batch.pending, pendingChunk{
				chunk: chunk,
				item:  len(batch.report.Items),
			})

		default:
			status.Err = err
		}
	}
}

// commitBatch embeds all queued chunks in one call and inserts them.
// An embedding failure aborts the commit before any insert, so a
// cancelled batch leaves no half-written records.
func (uc *UseCases) commitBatch(ctx context.Context, batch *ingestBatch) error {
	if len(batch.pending) == 0 {
		return nil
	}

	texts := make([]string, len(batch.pending))
	for i, p := range batch.pending {
		texts[i] = p.chunk.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	for i, p := range batch.pending {
		p.chunk.Vector = vectors[i]
		if err := uc.store.Insert(ctx, p.chunk); err != nil {
			batch.report.Items[p.item].Err = err
			continue
		}
		batch.report.Items[p.item].Added++
		batch.report.Added++
	}

	logging.From(ctx).Debug("ingestion batch committed",
		"added", batch.report.Added,
		"merged", batch.report.Merged,
		"skipped", batch.report.Skipped)
	return nil
}
