package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFileOperations(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	service := New(WithTrashDir(filepath.Join(dir, ".trash")))

	location := filepath.Join(dir, "notes.txt")
	require.NoError(t, service.Write(ctx, location, []byte("hello")))

	data, err := service.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assets, err := service.List(ctx, dir)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "notes.txt", assets[0].Name)
	assert.False(t, assets[0].IsDir)

	moved := filepath.Join(dir, "renamed.txt")
	require.NoError(t, service.Move(ctx, location, moved))
	_, err = os.Stat(location)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, service.Delete(ctx, moved))
	_, err = os.Stat(moved)
	assert.True(t, os.IsNotExist(err))
}

func TestServiceMoveMissingSource(t *testing.T) {
	service := New()
	err := service.Move(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), filepath.Join(t.TempDir(), "b.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestServiceDeleteMissingTarget(t *testing.T) {
	service := New()
	err := service.Delete(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestServiceMoveToTrash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	service := New(WithTrashDir(filepath.Join(dir, ".trash")))

	location := filepath.Join(dir, "notes.txt")
	require.NoError(t, service.Write(ctx, location, []byte("hello")))

	trashed, err := service.MoveToTrash(ctx, location)
	require.NoError(t, err)
	assert.Contains(t, trashed, ".trash")
	assert.Contains(t, trashed, "notes.txt")

	data, err := service.Read(ctx, trashed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	_, err = os.Stat(location)
	assert.True(t, os.IsNotExist(err))
}

func TestServiceMoveToTrashUnconfigured(t *testing.T) {
	service := New()
	_, err := service.MoveToTrash(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trash directory not configured")
}

func TestServicePatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	service := New()

	location := filepath.Join(dir, "config.txt")
	require.NoError(t, service.Write(ctx, location, []byte("alpha\nbeta\ngamma\n")))

	patchText := `--- config.txt
+++ config.txt
@@ -1,3 +1,3 @@
 alpha
-beta
+BETA
 gamma
`
	require.NoError(t, service.Patch(ctx, location, patchText))

	data, err := service.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nBETA\ngamma\n", string(data))
}

func TestServicePatchContextMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	service := New()

	location := filepath.Join(dir, "config.txt")
	require.NoError(t, service.Write(ctx, location, []byte("something else entirely\n")))

	patchText := `--- config.txt
+++ config.txt
@@ -1,1 +1,1 @@
-alpha
+beta
`
	err := service.Patch(ctx, location, patchText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")

	// the original is untouched on failure
	data, readErr := service.Read(ctx, location)
	require.NoError(t, readErr)
	assert.Equal(t, "something else entirely\n", string(data))
}
