package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/logging"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/retry"
)

// Client talks to a Qdrant instance over its REST API. One Client is
// bound to one collection.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	http       *http.Client
	policy     retry.Policy
}

var (
	_ interfaces.VectorStore = &Client{}
	_ interfaces.Snapshotter = &Client{}
)

// Option configures the Client
type Option func(*Client)

// WithAPIKey sets the api-key header on every request
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetryPolicy overrides the backoff policy for transient failures
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New creates a client for the given Qdrant base URL and collection
func New(baseURL, collection string, opts ...Option) (*Client, error) {
	if collection == "" {
		return nil, goerr.New("collection name is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, goerr.New("invalid Qdrant URL", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		http:       &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiResponse is the envelope Qdrant wraps every response in
type apiResponse struct {
	Status json.RawMessage `json:"status"`
	Result json.RawMessage `json:"result"`
}

// do performs one API call with retries on transient failures and
// decodes the result envelope into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return goerr.Wrap(err, "failed to encode request", goerr.V("path", path))
		}
	}

	var result json.RawMessage
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return retry.Abort(goerr.Wrap(err, "failed to build request", goerr.V("path", path)))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("api-key", c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return goerr.Wrap(types.ErrStoreUnavailable, "request failed",
				goerr.V("path", path), goerr.V("cause", err.Error()))
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return goerr.Wrap(err, "failed to read response", goerr.V("path", path))
		}

		if resp.StatusCode == http.StatusNotFound {
			return retry.Abort(goerr.Wrap(types.ErrNotFound, "resource not found", goerr.V("path", path)))
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return goerr.Wrap(types.ErrStoreUnavailable, "qdrant server error",
				goerr.V("path", path), goerr.V("status", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return retry.Abort(goerr.New("qdrant rejected the request",
				goerr.V("path", path), goerr.V("status", resp.StatusCode), goerr.V("body", string(raw))))
		}

		var envelope apiResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return retry.Abort(goerr.Wrap(err, "failed to decode response", goerr.V("path", path)))
		}
		result = envelope.Result
		return nil
	})
	if err != nil {
		return err
	}

	if out != nil && result != nil {
		if err := json.Unmarshal(result, out); err != nil {
			return goerr.Wrap(err, "failed to decode result", goerr.V("path", path))
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}

func (c *Client) collectionPath(suffix string) string {
	return fmt.Sprintf("/collections/%s%s", url.PathEscape(c.collection), suffix)
}

type collectionInfo struct {
	Config struct {
		Params struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// EnsureCollection creates the collection when missing and recreates
// it when the declared vector dimension differs. Recreation drops all
// stored vectors; it is logged and reported so the operator knows
// prior memory is gone.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) (bool, error) {
	if dimension <= 0 {
		return false, goerr.New("dimension must be positive", goerr.V("dimension", dimension))
	}

	var info collectionInfo
	err := c.do(ctx, http.MethodGet, c.collectionPath(""), nil, &info)
	switch {
	case err == nil:
		if info.Config.Params.Vectors.Size == dimension {
			return false, nil
		}
		logging.From(ctx).Warn("embedding dimension changed, recreating collection",
			"collection", c.collection,
			"old_dimension", info.Config.Params.Vectors.Size,
			"new_dimension", dimension)
		if err := c.do(ctx, http.MethodDelete, c.collectionPath(""), nil, nil); err != nil {
			return false, err
		}
		if err := c.createCollection(ctx, dimension); err != nil {
			return false, err
		}
		return true, nil

	case isNotFound(err):
		if err := c.createCollection(ctx, dimension); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, err
	}
}

func (c *Client) createCollection(ctx context.Context, dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := c.do(ctx, http.MethodPut, c.collectionPath(""), body, nil); err != nil {
		return err
	}
	return c.createPayloadIndexes(ctx)
}

// createPayloadIndexes indexes the fields filtered search and purge
// rely on
func (c *Client) createPayloadIndexes(ctx context.Context) error {
	indexes := []struct {
		field  string
		schema string
	}{
		{"content_hash", "keyword"},
		{"guild_id", "integer"},
		{"channel_id", "integer"},
		{"author_id", "integer"},
		{"message_id", "integer"},
		{"created_at_ts", "integer"},
	}
	for _, idx := range indexes {
		body := map[string]any{
			"field_name":   idx.field,
			"field_schema": idx.schema,
		}
		if err := c.do(ctx, http.MethodPut, c.collectionPath("/index?wait=true"), body, nil); err != nil {
			return goerr.Wrap(err, "failed to create payload index", goerr.V("field", idx.field))
		}
	}
	return nil
}
