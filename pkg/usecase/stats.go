package usecase

import (
	"context"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Stats summarizes the state of the indexed memory
type Stats struct {
	TotalChunks        int
	EmbeddingDimension int
	Snapshots          []interfaces.SnapshotInfo
}

// Stats reports chunk count, embedding dimension and, when the backend
// supports it, existing snapshots.
func (uc *UseCases) Stats(ctx context.Context) (*Stats, error) {
	count, err := uc.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	dimension, err := uc.embedder.Dimension(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalChunks:        count,
		EmbeddingDimension: dimension,
	}
	if snapshotter, ok := uc.store.(interfaces.Snapshotter); ok {
		snapshots, err := snapshotter.ListSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		stats.Snapshots = snapshots
	}
	return stats, nil
}

// Health verifies both backends answer: the store with a count, the
// embedder with its dimension probe.
func (uc *UseCases) Health(ctx context.Context) error {
	if _, err := uc.store.Count(ctx); err != nil {
		return goerr.Wrap(err, "vector store is not healthy")
	}
	if _, err := uc.embedder.Dimension(ctx); err != nil {
		return goerr.Wrap(err, "embedding backend is not healthy")
	}
	return nil
}

// Snapshot triggers a server-side snapshot on backends that support it
func (uc *UseCases) Snapshot(ctx context.Context) (*interfaces.SnapshotInfo, error) {
	snapshotter, ok := uc.store.(interfaces.Snapshotter)
	if !ok {
		return nil, goerr.New("the configured store backend does not support snapshots")
	}
	return snapshotter.CreateSnapshot(ctx)
}
