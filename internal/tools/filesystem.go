package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"unicode/utf8"
)

// DefaultMaxReadChars caps the content handed back to a model.
const DefaultMaxReadChars = 12000

// TruncationMarker is appended to content cut at the read limit.
const TruncationMarker = "\n\n[TRUNCATED]"

var (
	// ErrNotFound is returned for missing files and non-regular files.
	ErrNotFound = errors.New("file not found")
	// ErrAccessDenied is returned for paths outside the project root.
	ErrAccessDenied = errors.New("access denied")
	// ErrNoProject is returned when no project root has been set.
	ErrNoProject = errors.New("no project set")
)

// Filesystem provides read-only file access rooted at a project directory.
// The root can be switched at runtime.
type Filesystem struct {
	maxChars int

	mu    sync.RWMutex
	guard *PathGuard
}

// NewFilesystem builds a filesystem tool. An empty baseDir leaves the
// project unset until SetRoot is called.
func NewFilesystem(baseDir string, maxChars int) (*Filesystem, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxReadChars
	}
	f := &Filesystem{maxChars: maxChars}
	if baseDir != "" {
		if err := f.SetRoot(baseDir); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SetRoot points the filesystem at a new project directory.
func (f *Filesystem) SetRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("set project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("set project root: %s is not a directory", dir)
	}
	guard, err := NewPathGuard(dir)
	if err != nil {
		return fmt.Errorf("set project root: %w", err)
	}

	f.mu.Lock()
	f.guard = guard
	f.mu.Unlock()
	return nil
}

// Root returns the current project root ("" when unset).
func (f *Filesystem) Root() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.guard == nil {
		return ""
	}
	return f.guard.BaseDir
}

// ReadFile returns the content of a file relative to the project root,
// truncated to the configured limit with TruncationMarker appended.
func (f *Filesystem) ReadFile(path string) (string, error) {
	f.mu.RLock()
	guard := f.guard
	f.mu.RUnlock()
	if guard == nil {
		return "", ErrNoProject
	}

	resolved, err := guard.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
		}
		return "", err
	}
	return truncate(string(data), f.maxChars), nil
}

func truncate(content string, maxChars int) string {
	if utf8.RuneCountInString(content) <= maxChars {
		return content
	}
	n := 0
	for i := range content {
		if n == maxChars {
			return content[:i] + TruncationMarker
		}
		n++
	}
	return content
}
