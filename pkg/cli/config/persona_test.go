package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/bz-cogs/aiuser-rag/pkg/cli/config"
)

func TestPersonaConfigure(t *testing.T) {
	t.Run("empty path yields empty persona", func(t *testing.T) {
		p := config.NewPersonaForTest("")
		persona, err := p.Configure()
		gt.NoError(t, err)
		gt.Value(t, persona).Equal("")
	})

	t.Run("loads prompt from TOML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "persona.toml")
		content := "name = \"guide\"\nprompt = \"You are a travel guide.\"\n"
		gt.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		persona, err := config.NewPersonaForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, persona).Equal("You are a travel guide.")
	})

	t.Run("rejects file without prompt", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "persona.toml")
		gt.NoError(t, os.WriteFile(path, []byte("name = \"empty\"\n"), 0o644))

		_, err := config.NewPersonaForTest(path).Configure()
		gt.Error(t, err)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := config.NewPersonaForTest("/nonexistent/persona.toml").Configure()
		gt.Error(t, err)
	})
}
