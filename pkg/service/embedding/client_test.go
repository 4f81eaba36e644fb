package embedding_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/embedding"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/retry"
)

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// fakeBackend serves an OpenAI-compatible /v1/embeddings endpoint. Each
// input text maps to a fixed 3-dimensional vector derived from its
// length so tests can check ordering.
type fakeBackend struct {
	mu       sync.Mutex
	requests []embeddingsRequest
	failures int
}

func (f *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/v1/embeddings")

		var req embeddingsRequest
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		fail := f.failures > 0
		if fail {
			f.failures--
		}
		f.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"backend overloaded","type":"server_error"}}`)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		items := make([]item, len(req.Input))
		for i, text := range req.Input {
			items[i] = item{
				Object:    "embedding",
				Index:     i,
				Embedding: []float32{float32(len(text)), 0.5, -0.5},
			}
		}
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   items,
		}))
	}
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestEmbedPreservesOrderAcrossBatches(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "test-model",
		embedding.WithBatchSize(2),
		embedding.WithConcurrency(2),
		embedding.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := client.Embed(context.Background(), texts)
	gt.NoError(t, err).Required()

	gt.Array(t, vectors).Length(len(texts))
	for i, text := range texts {
		gt.Value(t, vectors[i][0]).Equal(float32(len(text)))
	}

	// 5 texts with batch size 2 means 3 requests
	gt.Value(t, backend.requestCount()).Equal(3)
}

func TestEmbedEmptyInput(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "test-model")
	gt.NoError(t, err).Required()

	vectors, err := client.Embed(context.Background(), nil)
	gt.NoError(t, err)
	gt.Array(t, vectors).Length(0)
	gt.Value(t, backend.requestCount()).Equal(0)
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	backend := &fakeBackend{failures: 2}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "test-model",
		embedding.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	vectors, err := client.Embed(context.Background(), []string{"hello"})
	gt.NoError(t, err).Required()
	gt.Array(t, vectors).Length(1)
	gt.Value(t, backend.requestCount()).Equal(3)
}

func TestEmbedSurfacesUnavailableAfterExhaustion(t *testing.T) {
	backend := &fakeBackend{failures: 100}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "test-model",
		embedding.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	_, err = client.Embed(context.Background(), []string{"hello"})
	gt.Error(t, err).Is(types.ErrEmbeddingUnavailable)
	gt.Value(t, backend.requestCount()).Equal(3)
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var count int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"unknown model","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "bogus-model",
		embedding.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	_, err = client.Embed(context.Background(), []string{"hello"})
	gt.Error(t, err).Is(types.ErrEmbeddingUnavailable)

	mu.Lock()
	defer mu.Unlock()
	gt.Value(t, count).Equal(1)
}

func TestDimensionProbeIsCached(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	client, err := embedding.New(srv.URL+"/v1", "test-key", "test-model")
	gt.NoError(t, err).Required()

	dim, err := client.Dimension(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, dim).Equal(3)

	dim, err = client.Dimension(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, dim).Equal(3)

	gt.Value(t, backend.requestCount()).Equal(1)
}

func TestNewValidation(t *testing.T) {
	_, err := embedding.New("", "key", "model")
	gt.Error(t, err)

	_, err = embedding.New("http://localhost:11434/v1", "key", "")
	gt.Error(t, err)
}
