package interfaces

import (
	"context"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// VectorStore is the durable owner of chunk payloads and vectors.
// Point identity is derived from the content hash, so inserting the
// same content twice converges on one record by construction.
type VectorStore interface {
	// EnsureCollection prepares the collection for the given vector
	// dimension. If an existing collection declares a different
	// dimension it is dropped and recreated; recreated reports that
	// destructive event to the caller.
	EnsureCollection(ctx context.Context, dimension int) (recreated bool, err error)

	// Lookup returns the stored chunk for the hash, without its
	// vector. Returns types.ErrNotFound on miss.
	Lookup(ctx context.Context, hash types.ContentHash) (*model.Chunk, error)

	// Insert stores a new chunk with its vector
	Insert(ctx context.Context, chunk *model.Chunk) error

	// MergeMetadata records a duplicate sighting on the stored chunk:
	// source union and LastSeen advance only. The vector is never
	// rewritten.
	MergeMetadata(ctx context.Context, hash types.ContentHash, source string, seenAt time.Time) error

	// Search returns up to k results ordered by descending score.
	// Results below minScore are excluded at the store layer.
	Search(ctx context.Context, vector []float32, k int, minScore float64, filter model.SearchFilter) ([]*model.QueryResult, error)

	// DeleteByFilter removes all chunks matching the filter. A zero
	// filter is rejected.
	DeleteByFilter(ctx context.Context, filter model.PurgeFilter) (int, error)

	// Scroll streams every chunk matching the filter (vectors
	// excluded) to fn. fn returning an error stops the scroll.
	Scroll(ctx context.Context, filter model.SearchFilter, fn func(*model.Chunk) error) error

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int, error)
}

// SnapshotInfo describes one store-side collection snapshot
type SnapshotInfo struct {
	Name      string
	CreatedAt time.Time
	SizeBytes int64
}

// Snapshotter is implemented by stores that can snapshot their
// collection server-side. Snapshot lifecycle (scheduling, download,
// pruning) belongs to an external collaborator.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context) (*SnapshotInfo, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
}
