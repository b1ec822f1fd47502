// -- cmd/cmd_test.go --
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifestJSON = `{
  "version": "1",
  "site": {"name": "Taskboard", "origin": "https://tasks.example.com"},
  "actions": {
    "task.create": {
      "title": "Create a task",
      "risk": "low",
      "confirmation": "optional",
      "input": {
        "type": "object",
        "properties": {"title": {"type": "string"}},
        "required": ["title"]
      }
    }
  }
}`

func writeTestManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent-actions.json")
	require.NoError(t, os.WriteFile(path, []byte(testManifestJSON), 0o644))
	return path
}

func TestManifestValidateCmd(t *testing.T) {
	cmd := newManifestValidateCmd()

	t.Run("valid manifest", func(t *testing.T) {
		err := cmd.RunE(cmd, []string{writeTestManifest(t)})
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := cmd.RunE(cmd, []string{filepath.Join(t.TempDir(), "nope.json")})
		assert.Error(t, err)
	})

	t.Run("structurally broken manifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"version": "1", "site": {}, "actions": {}}`), 0o644))
		err := cmd.RunE(cmd, []string{path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "origin")
	})
}

func TestManifestCatalogCmd(t *testing.T) {
	cmd := newManifestCatalogCmd()
	assert.NoError(t, cmd.RunE(cmd, []string{writeTestManifest(t)}))
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["run"], "run command should be registered")
	assert.True(t, names["manifest"], "manifest command should be registered")
}
