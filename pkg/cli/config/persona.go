package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Persona holds CLI flags for the persona system prompt. The prompt
// file is TOML so a persona can carry a name alongside its text.
type Persona struct {
	path string
}

type personaFile struct {
	Name   string `toml:"name"`
	Prompt string `toml:"prompt"`
}

// Flags returns CLI flags for persona configuration
func (p *Persona) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "persona-file",
			Usage:       "TOML file with the persona system prompt (optional)",
			Sources:     cli.EnvVars("AIUSER_PERSONA_FILE"),
			Destination: &p.path,
		},
	}
}

// Configure loads the persona prompt. An unset path yields an empty
// persona, which the prompt assembler skips.
func (p *Persona) Configure() (string, error) {
	if p.path == "" {
		return "", nil
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read persona file", goerr.V("path", p.path))
	}

	var file personaFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return "", goerr.Wrap(err, "failed to parse persona file", goerr.V("path", p.path))
	}
	if strings.TrimSpace(file.Prompt) == "" {
		return "", goerr.New("persona file has no prompt", goerr.V("path", p.path))
	}

	return strings.TrimSpace(file.Prompt), nil
}
