package gatekeeper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxResolve(t *testing.T) {
	root := t.TempDir()
	sandbox, err := NewSandbox(root)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		path      string
		expectErr bool
	}{
		{name: "relative inside", path: "notes.txt"},
		{name: "nested inside", path: "sub/dir/notes.txt"},
		{name: "dot path", path: "."},
		{name: "absolute inside", path: filepath.Join(sandbox.Root(), "notes.txt")},
		{name: "parent traversal", path: "../etc/passwd", expectErr: true},
		{name: "nested traversal", path: "sub/../../escape.txt", expectErr: true},
		{name: "absolute outside", path: "/etc/passwd", expectErr: true},
		{name: "empty", path: "", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolved, err := sandbox.Resolve(tc.path)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(resolved, sandbox.Root()))
		})
	}
}

func TestSandboxResolveRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	sandbox, err := NewSandbox(root)
	require.NoError(t, err)

	link := filepath.Join(sandbox.Root(), "escape")
	require.NoError(t, os.Symlink(outside, link))

	_, err = sandbox.Resolve("escape/secret.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symlink")
}

func TestSandboxResolveAllowsInternalSymlink(t *testing.T) {
	root := t.TempDir()
	sandbox, err := NewSandbox(root)
	require.NoError(t, err)

	target := filepath.Join(sandbox.Root(), "real")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(sandbox.Root(), "alias")))

	resolved, err := sandbox.Resolve("alias/notes.txt")
	require.NoError(t, err)
	assert.Contains(t, resolved, sandbox.Root())
}

func TestNewSandboxCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "workspace")
	sandbox, err := NewSandbox(root)
	require.NoError(t, err)
	info, err := os.Stat(sandbox.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
