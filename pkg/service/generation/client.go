package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/retry"
)

// Client produces chat completions through an OpenAI-compatible
// endpoint. It shares the transport conventions of the embedding
// client: custom base URL, bounded retries on transient failures.
type Client struct {
	api    *openai.Client
	model  string
	policy retry.Policy
}

// Option configures the Client
type Option func(*Client)

// WithRetryPolicy overrides the backoff policy for transient failures
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New creates a generation client for the given endpoint and model
func New(endpoint, apiKey, mdl string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, goerr.New("generation endpoint is required")
	}
	if mdl == "" {
		return nil, goerr.New("generation model is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = endpoint

	c := &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  mdl,
		policy: retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate sends the assembled prompt to the chat model and returns the
// completion text. maxTokens of zero leaves the model's default cap in
// place. Failures surface as types.ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, messages []model.PromptMessage, maxTokens int) (string, error) {
	if len(messages) == 0 {
		return "", goerr.Wrap(types.ErrGenerationFailed, "no messages to send")
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		role, err := toWireRole(m.Role)
		if err != nil {
			return "", err
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(ctx, req)
		if callErr != nil && !isTransient(callErr) {
			return retry.Abort(callErr)
		}
		return callErr
	})
	if err != nil {
		return "", goerr.Wrap(types.ErrGenerationFailed, "chat completion failed",
			goerr.V("model", c.model), goerr.V("cause", err.Error()))
	}

	if len(resp.Choices) == 0 {
		return "", goerr.Wrap(types.ErrGenerationFailed, "completion returned no choices",
			goerr.V("model", c.model))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toWireRole(r model.Role) (string, error) {
	switch r {
	case model.RoleSystem:
		return openai.ChatMessageRoleSystem, nil
	case model.RoleUser:
		return openai.ChatMessageRoleUser, nil
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant, nil
	default:
		return "", goerr.Wrap(types.ErrGenerationFailed, "unknown prompt role", goerr.V("role", r))
	}
}

func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode == 0
	}
	return true
}
