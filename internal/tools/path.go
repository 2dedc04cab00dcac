package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGuard ensures operations stay within a base directory.
type PathGuard struct {
	BaseDir string
}

// NewPathGuard constructs a guard rooted at baseDir (defaults to current working directory).
func NewPathGuard(baseDir string) (*PathGuard, error) {
	if baseDir == "" {
		var err error
		baseDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(absBase); err == nil {
		absBase = resolved
	}
	return &PathGuard{BaseDir: absBase}, nil
}

// Resolve validates and returns an absolute path inside BaseDir. Symlinks
// that point outside the base are rejected.
func (g *PathGuard) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: path is required", ErrAccessDenied)
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute paths are not allowed", ErrAccessDenied)
	}
	abs := filepath.Clean(filepath.Join(g.BaseDir, clean))
	if !g.inside(abs) {
		return "", fmt.Errorf("%w: path escapes base directory", ErrAccessDenied)
	}

	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil
		}
		return "", err
	}
	if !g.inside(target) {
		return "", fmt.Errorf("%w: path escapes base directory", ErrAccessDenied)
	}
	return target, nil
}

func (g *PathGuard) inside(abs string) bool {
	return abs == g.BaseDir || strings.HasPrefix(abs, g.BaseDir+string(os.PathSeparator))
}
