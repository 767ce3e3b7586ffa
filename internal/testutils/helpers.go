package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles creates a temporary directory holding the given files
// (relative path → content) and returns its absolute path.
// It fails the test immediately on error.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(absPath, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return absPath
}

// MinimalStage is a one-column stage body in YAML.
const MinimalStage = `filter: "arm == 'painting'"
grouping: [plate, well, site]
columns:
  - static: {name: Metadata_Plate, template: "{plate}"}
`

// RuleDir seeds a per-stage rule directory with a document file and one
// minimal stage per id.
func RuleDir(t *testing.T, ids ...string) string {
	t.Helper()
	files := map[string]string{
		"document.yaml": "vars:\n  base_path: /app/data\n",
	}
	for _, id := range ids {
		files[id+".yaml"] = MinimalStage
	}
	return WriteFiles(t, files)
}
