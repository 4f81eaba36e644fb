package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
)

// Store is an in-memory VectorStore used for tests and for running
// without a Qdrant instance. Search is an exact cosine scan; fine for
// the small collections this backend is meant for.
type Store struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[types.ContentHash]*model.Chunk
}

var _ interfaces.VectorStore = &Store{}

func New() *Store {
	return &Store{
		chunks: make(map[types.ContentHash]*model.Chunk),
	}
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int) (bool, error) {
	if dimension <= 0 {
		return false, goerr.New("dimension must be positive", goerr.V("dimension", dimension))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == dimension {
		return false, nil
	}

	recreated := s.dimension != 0 && len(s.chunks) > 0
	s.dimension = dimension
	s.chunks = make(map[types.ContentHash]*model.Chunk)
	return recreated, nil
}

func (s *Store) Lookup(ctx context.Context, hash types.ContentHash) (*model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[hash]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "chunk not found", goerr.V("content_hash", hash))
	}

	copied := chunk.Clone()
	copied.Vector = nil
	return copied, nil
}

func (s *Store) Insert(ctx context.Context, chunk *model.Chunk) error {
	if err := chunk.Hash.Validate(); err != nil {
		return err
	}
	if len(chunk.Vector) == 0 {
		return goerr.New("chunk has no vector", goerr.V("content_hash", chunk.Hash))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 && len(chunk.Vector) != s.dimension {
		return goerr.New("vector dimension mismatch",
			goerr.V("want", s.dimension), goerr.V("got", len(chunk.Vector)))
	}

	s.chunks[chunk.Hash] = chunk.Clone()
	return nil
}

func (s *Store) MergeMetadata(ctx context.Context, hash types.ContentHash, source string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[hash]
	if !ok {
		return goerr.Wrap(types.ErrNotFound, "chunk not found", goerr.V("content_hash", hash))
	}

	chunk.Merge(source, seenAt)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int, minScore float64, filter model.SearchFilter) ([]*model.QueryResult, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*model.QueryResult
	for _, chunk := range s.chunks {
		if !filter.Matches(chunk) {
			continue
		}
		score := cosineSimilarity(vector, chunk.Vector)
		// A zero threshold disables score filtering entirely, matching
		// the behavior of an omitted score_threshold on the Qdrant side
		if minScore > 0 && score < minScore {
			continue
		}
		copied := chunk.Clone()
		copied.Vector = nil
		results = append(results, &model.QueryResult{Chunk: copied, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Hash < results[j].Chunk.Hash
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) DeleteByFilter(ctx context.Context, filter model.PurgeFilter) (int, error) {
	if filter.IsZero() {
		return 0, goerr.New("refusing to purge with an empty filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for hash, chunk := range s.chunks {
		if filter.Matches(chunk) {
			delete(s.chunks, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Scroll(ctx context.Context, filter model.SearchFilter, fn func(*model.Chunk) error) error {
	s.mu.RLock()
	hashes := make([]types.ContentHash, 0, len(s.chunks))
	for hash := range s.chunks {
		hashes = append(hashes, hash)
	}
	s.mu.RUnlock()

	// Stable order so exports are reproducible
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, hash := range hashes {
		s.mu.RLock()
		chunk, ok := s.chunks[hash]
		var copied *model.Chunk
		if ok && filter.Matches(chunk) {
			copied = chunk.Clone()
			copied.Vector = nil
		}
		s.mu.RUnlock()

		if copied == nil {
			continue
		}
		if err := fn(copied); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
