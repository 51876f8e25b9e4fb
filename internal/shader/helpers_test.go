package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-build/internal/config"
)

// makeTree creates files (relative, slash separated) under a fresh temp dir.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("#version 450\nvoid main() {}\n"), 0o644))
	}
	return root
}

func testConfig(source, output string) config.Shader {
	cfg := config.DefaultShader()
	cfg.Source = source
	cfg.Output = output
	return cfg
}
