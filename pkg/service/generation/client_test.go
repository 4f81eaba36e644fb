package generation_test

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

	"github.com/bz-cogs/aiuser-rag/pkg/domain/model"
	"github.com/bz-cogs/aiuser-rag/pkg/domain/types"
	"github.com/bz-cogs/aiuser-rag/pkg/service/generation"
	"github.com/bz-cogs/aiuser-rag/pkg/utils/retry"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestGenerateSendsRolesAndTokenCap(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/v1/chat/completions")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  Paris is the capital.  "}},
			},
		}))
	}))
	defer srv.Close()

	client, err := generation.New(srv.URL+"/v1", "test-key", "test-model")
	gt.NoError(t, err).Required()

	messages := []model.PromptMessage{
		{Role: model.RoleSystem, Content: "You are helpful."},
		{Role: model.RoleUser, Content: "Where is Paris?"},
		{Role: model.RoleAssistant, Content: "In France."},
		{Role: model.RoleUser, Content: "What is its status?"},
	}
	text, err := client.Generate(context.Background(), messages, 256)
	gt.NoError(t, err).Required()
	gt.Value(t, text).Equal("Paris is the capital.")

	gt.Value(t, got.Model).Equal("test-model")
	gt.Value(t, got.MaxTokens).Equal(256)
	gt.Array(t, got.Messages).Length(4)
	gt.Value(t, got.Messages[0].Role).Equal("system")
	gt.Value(t, got.Messages[1].Role).Equal("user")
	gt.Value(t, got.Messages[2].Role).Equal("assistant")
	gt.Value(t, got.Messages[3].Content).Equal("What is its status?")
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	var mu sync.Mutex
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"loading model","type":"server_error"}}`)
			return
		}
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		}))
	}))
	defer srv.Close()

	client, err := generation.New(srv.URL+"/v1", "test-key", "test-model",
		generation.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	text, err := client.Generate(context.Background(), []model.PromptMessage{
		{Role: model.RoleUser, Content: "hello"},
	}, 0)
	gt.NoError(t, err).Required()
	gt.Value(t, text).Equal("ok")
	gt.Value(t, count).Equal(3)
}

func TestGenerateFailsAfterExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"broken","type":"server_error"}}`)
	}))
	defer srv.Close()

	client, err := generation.New(srv.URL+"/v1", "test-key", "test-model",
		generation.WithRetryPolicy(fastPolicy()))
	gt.NoError(t, err).Required()

	_, err = client.Generate(context.Background(), []model.PromptMessage{
		{Role: model.RoleUser, Content: "hello"},
	}, 0)
	gt.Error(t, err).Is(types.ErrGenerationFailed)
}

func TestGenerateRejectsEmptyPromptAndUnknownRole(t *testing.T) {
	client, err := generation.New("http://localhost:1/v1", "test-key", "test-model")
	gt.NoError(t, err).Required()

	_, err = client.Generate(context.Background(), nil, 0)
	gt.Error(t, err).Is(types.ErrGenerationFailed)

	_, err = client.Generate(context.Background(), []model.PromptMessage{
		{Role: model.Role("moderator"), Content: "hi"},
	}, 0)
	gt.Error(t, err).Is(types.ErrGenerationFailed)
}
