package embedding

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/retry"
)

const (
	defaultBatchSize   = 32
	defaultConcurrency = 4

	// dimensionProbe is embedded once per client to learn the model's
	// vector dimension
	dimensionProbe = "dimension probe"
)

// Client embeds texts through an OpenAI-compatible embeddings endpoint
// (a local service such as Ollama or text-embeddings-inference).
type Client struct {
	api         *openai.Client
	model       string
	batchSize   int
	concurrency int
	policy      retry.Policy

	mu  sync.Mutex
	dim int
}

// Option configures the Client
type Option func(*Client)

// WithBatchSize caps how many texts go into one embeddings request
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithConcurrency bounds how many embeddings requests run in parallel
// within one Embed call
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRetryPolicy overrides the backoff policy for transient failures
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New creates an embedding client for the given endpoint and model
func New(endpoint, apiKey, model string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, goerr.New("embedding endpoint is required")
	}
	if model == "" {
		return nil, goerr.New("embedding model is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = endpoint

	c := &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
		policy:      retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Embed returns one vector per input text, in input order. Batches are
// dispatched with bounded parallelism; transient backend failures are
// retried with backoff and surface as types.ErrEmbeddingUnavailable
// once retries exhaust. That error is fatal for the enclosing
// operation, never silently skipped.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		eg.Go(func() error {
			batch, err := c.embedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp openai.EmbeddingResponse

	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: texts,
		})
		if callErr != nil && !isTransient(callErr) {
			return retry.Abort(callErr)
		}
		return callErr
	})
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbeddingUnavailable, "embedding request failed",
			goerr.V("model", c.model), goerr.V("batch_size", len(texts)), goerr.V("cause", err.Error()))
	}

	if len(resp.Data) != len(texts) {
		return nil, goerr.Wrap(types.ErrEmbeddingUnavailable, "embedding count mismatch",
			goerr.V("want", len(texts)), goerr.V("got", len(resp.Data)))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, goerr.Wrap(types.ErrEmbeddingUnavailable, "embedding index out of range",
				goerr.V("index", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Dimension reports the embedding dimension of the active model. The
// first call probes the endpoint; the result is cached per client.
func (c *Client) Dimension(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dim > 0 {
		return c.dim, nil
	}

	vectors, err := c.embedBatch(ctx, []string{dimensionProbe})
	if err != nil {
		return 0, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return 0, goerr.Wrap(types.ErrEmbeddingUnavailable, "probe returned an empty vector")
	}

	c.dim = len(vectors[0])
	return c.dim, nil
}

// isTransient reports whether the failure is worth retrying:
// connection errors, 5xx and rate limiting.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode == 0
	}
	// Connection-level failure without an HTTP status
	return true
}
