package phpengine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestTranslatePathRootIndex covers invariant 10: "/" resolves to
// <docroot>/index.php if present.
func TestTranslatePathRootIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.php"), "<?php ?>")

	got, err := translatePath(dir, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, "index.php"))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTranslatePathRootNoIndex(t *testing.T) {
	dir := t.TempDir()
	_, err := translatePath(dir, "/")
	reqErr, ok := err.(*RequestError)
	if !ok || reqErr.Kind != ScriptNotFound {
		t.Fatalf("expected ScriptNotFound, got %v", err)
	}
}

// TestTranslatePathTrailingSlashPrefersIndex covers invariant 11.
func TestTranslatePathTrailingSlashPrefersIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foo", "index.php"), "<?php ?>")

	got, err := translatePath(dir, "/foo/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, "foo", "index.php"))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTranslatePathTrailingSlashFallsBackToDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foo"), "<?php ?>")

	got, err := translatePath(dir, "/foo/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, "foo"))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTranslatePathTrailingSlashNeitherExists(t *testing.T) {
	dir := t.TempDir()
	_, err := translatePath(dir, "/foo/")
	reqErr, ok := err.(*RequestError)
	if !ok || reqErr.Kind != ScriptNotFound {
		t.Fatalf("expected ScriptNotFound, got %v", err)
	}
}

// TestTranslatePathNoTrailingSlashNeverAutoIndexes covers invariant 12.
func TestTranslatePathNoTrailingSlashNeverAutoIndexes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foo", "index.php"), "<?php ?>")

	_, err := translatePath(dir, "/foo")
	reqErr, ok := err.(*RequestError)
	if !ok || reqErr.Kind != ScriptNotFound {
		t.Fatalf("expected ScriptNotFound (no auto-index), got %v", err)
	}
}

func TestTranslatePathRelativeURIRejected(t *testing.T) {
	dir := t.TempDir()
	_, err := translatePath(dir, "foo")
	reqErr, ok := err.(*RequestError)
	if !ok || reqErr.Kind != ExpectedAbsoluteRequestURI {
		t.Fatalf("expected ExpectedAbsoluteRequestURI, got %v", err)
	}
}

// TestTranslatePathStaysWithinDocroot covers invariant 1: path traversal
// attempts never escape the canonicalized docroot.
func TestTranslatePathStaysWithinDocroot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "safe.php"), "<?php ?>")

	got, err := translatePath(dir, "/../../etc/passwd")
	if err == nil {
		t.Fatalf("expected traversal to fail containment, got path %s", got)
	}
}
