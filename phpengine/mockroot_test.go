package phpengine_test

import (
	"os"
	"path/filepath"
	"testing"
)

// mockRoot is a minimal stand-in for original_source's MockRoot/
// MockRootBuilder fixture (crates/php/src/test.rs), scoped down to the
// single thing phpengine's own tests need: a temp directory with a few
// named files in it.
func mockRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mockRoot: mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
			t.Fatalf("mockRoot: write %s: %v", name, err)
		}
	}
	return dir
}
