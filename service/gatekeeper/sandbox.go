package gatekeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox confines operations to a single directory tree. Resolve normalizes
// a candidate path and fails closed when it escapes the root via relative
// traversal, an absolute override or symlink indirection.
type Sandbox struct {
	root string
}

// NewSandbox creates a sandbox rooted at root; the directory is created when
// missing so a fresh workspace works out of the box.
func NewSandbox(root string) (*Sandbox, error) {
	if root == "" {
		return nil, fmt.Errorf("sandbox root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	// resolve the root itself so containment checks compare like with like
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Sandbox{root: resolved}, nil
}

// Root returns the resolved sandbox root.
func (s *Sandbox) Root() string { return s.root }

// Resolve returns the absolute location of path inside the sandbox, or an
// error when the normalized path escapes the root.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.root, candidate)
	}
	candidate = filepath.Clean(candidate)
	if !s.contains(candidate) {
		return "", fmt.Errorf("path %q escapes sandbox root", path)
	}
	// Symlinks inside the tree may still point outside: resolve the deepest
	// existing ancestor and re-check.
	resolved, err := s.resolveExisting(candidate)
	if err != nil {
		return "", err
	}
	if !s.contains(resolved) {
		return "", fmt.Errorf("path %q escapes sandbox root via symlink", path)
	}
	return candidate, nil
}

func (s *Sandbox) contains(path string) bool {
	if path == s.root {
		return true
	}
	return strings.HasPrefix(path, s.root+string(filepath.Separator))
}

// resolveExisting walks up from path to the deepest existing ancestor,
// resolves its symlinks and re-joins the non-existing remainder.
func (s *Sandbox) resolveExisting(path string) (string, error) {
	remainder := ""
	current := path
	for {
		if _, err := os.Lstat(current); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		if remainder == "" {
			remainder = filepath.Base(current)
		} else {
			remainder = filepath.Join(filepath.Base(current), remainder)
		}
		current = parent
	}
	resolved, err := filepath.EvalSymlinks(current)
	if err != nil {
		return "", err
	}
	if remainder != "" {
		resolved = filepath.Join(resolved, remainder)
	}
	return resolved, nil
}
