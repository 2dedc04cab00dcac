package tools

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "file.txt"), "hello")

	fsTool, err := NewFilesystem(dir, 0)
	requireNoError(t, err)

	content, err := fsTool.ReadFile("sub/file.txt")
	requireNoError(t, err)
	if content != "hello" {
		t.Fatalf("expected hello, got %s", content)
	}
}

func TestFilesystemPreventsTraversal(t *testing.T) {
	dir := t.TempDir()
	fsTool, err := NewFilesystem(dir, 0)
	requireNoError(t, err)

	for _, p := range []string{"../etc/passwd", "/etc/passwd", "a/../../x"} {
		if _, err := fsTool.ReadFile(p); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("expected access denied for %s, got %v", p, err)
		}
	}
}

func TestFilesystemRejectsEscapingSymlink(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.txt"), "nope")

	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	fsTool, err := NewFilesystem(dir, 0)
	requireNoError(t, err)
	if _, err := fsTool.ReadFile("link.txt"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestFilesystemNotFound(t *testing.T) {
	dir := t.TempDir()
	requireNoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0o755))

	fsTool, err := NewFilesystem(dir, 0)
	requireNoError(t, err)

	if _, err := fsTool.ReadFile("missing.go"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := fsTool.ReadFile("pkg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for directory, got %v", err)
	}
}

func TestFilesystemTruncates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.txt"), strings.Repeat("é", 20))

	fsTool, err := NewFilesystem(dir, 8)
	requireNoError(t, err)

	content, err := fsTool.ReadFile("big.txt")
	requireNoError(t, err)
	if content != strings.Repeat("é", 8)+TruncationMarker {
		t.Fatalf("unexpected truncation: %q", content)
	}
}

func TestFilesystemWithoutProject(t *testing.T) {
	fsTool, err := NewFilesystem("", 0)
	requireNoError(t, err)
	if _, err := fsTool.ReadFile("a.txt"); !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected no project, got %v", err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	requireNoError(t, fsTool.SetRoot(dir))
	if fsTool.Root() == "" {
		t.Fatalf("expected root to be set")
	}
	if _, err := fsTool.ReadFile("a.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fsTool.SetRoot(filepath.Join(dir, "a.txt")); err == nil {
		t.Fatalf("expected error for non-directory root")
	}
}

func TestSchemaUsage(t *testing.T) {
	s, ok := NewRegistry(nil).Schema("read_file")
	if !ok {
		t.Fatalf("read_file schema missing")
	}
	if got := s.Usage(); got != `{"tool": "read_file", "path": "<relative file path>"}` {
		t.Fatalf("unexpected usage: %s", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	requireNoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	requireNoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
