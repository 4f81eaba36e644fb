package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/bz-cogs/aiuser-rag/pkg/service/generation"
)

// LLM holds CLI flags for the chat completion backend
type LLM struct {
	endpoint string
	apiKey   string
	model    string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-endpoint",
			Usage:       "OpenAI-compatible chat completions endpoint",
			Value:       "http://localhost:11434/v1",
			Sources:     cli.EnvVars("AIUSER_LLM_ENDPOINT"),
			Destination: &l.endpoint,
		},
		&cli.StringFlag{
			Name:        "llm-api-key",
			Usage:       "API key for the chat endpoint",
			Sources:     cli.EnvVars("AIUSER_LLM_API_KEY"),
			Destination: &l.apiKey,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Chat model name",
			Value:       "llama3.1",
			Sources:     cli.EnvVars("AIUSER_LLM_MODEL"),
			Destination: &l.model,
		},
	}
}

// Configure builds the generation client
func (l *LLM) Configure() (*generation.Client, error) {
	client, err := generation.New(l.endpoint, l.apiKey, l.model)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize generation client")
	}
	return client, nil
}
