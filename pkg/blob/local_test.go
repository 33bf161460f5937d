package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/blob"
)

func newLocalStorage(t *testing.T) (*blob.LocalStorage, string) {
	t.Helper()

	dir := t.TempDir()
	storage, err := blob.NewLocalStorage(blob.LocalConfig{
		BaseDir: dir,
		BaseURL: "/files/",
	})
	require.NoError(t, err)

	return storage, dir
}

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("creates missing base dir", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "root")
		_, err := blob.NewLocalStorage(blob.LocalConfig{BaseDir: dir})
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty base dir rejected", func(t *testing.T) {
		t.Parallel()

		_, err := blob.NewLocalStorage(blob.LocalConfig{})
		assert.ErrorIs(t, err, blob.ErrInvalidConfig)
	})
}

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	t.Parallel()

	storage, dir := newLocalStorage(t)
	ctx := context.Background()

	obj, err := storage.Save(ctx, strings.NewReader("hello world"), "2025/03/07/abc.txt")
	require.NoError(t, err)
	assert.Equal(t, "2025/03/07/abc.txt", obj.Path)
	assert.Equal(t, int64(11), obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, "2025", "03", "07", "abc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	rc, err := storage.Open(ctx, obj.Path)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestLocalStorage_SaveRejectsTraversal(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)

	_, err := storage.Save(context.Background(), strings.NewReader("x"), "../escape.txt")
	assert.ErrorIs(t, err, blob.ErrInvalidPath)
}

func TestLocalStorage_SaveNilReader(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)

	_, err := storage.Save(context.Background(), nil, "a.txt")
	assert.ErrorIs(t, err, blob.ErrNilReader)
}

func TestLocalStorage_SaveCanceledContext(t *testing.T) {
	t.Parallel()

	storage, dir := newLocalStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.Save(ctx, strings.NewReader("x"), "a.txt")
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(statErr), "partial file must not remain")
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)

	_, err := storage.Open(context.Background(), "nope.txt")
	assert.ErrorIs(t, err, blob.ErrObjectNotFound)
}

func TestLocalStorage_Delete(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)
	ctx := context.Background()

	_, err := storage.Save(ctx, strings.NewReader("x"), "sub/a.txt")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, "sub/a.txt"))
	assert.False(t, storage.Exists(ctx, "sub/a.txt"))

	assert.ErrorIs(t, storage.Delete(ctx, "sub/a.txt"), blob.ErrObjectNotFound)
	assert.ErrorIs(t, storage.Delete(ctx, "sub"), blob.ErrIsDirectory)
}

func TestLocalStorage_DeleteDir(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)
	ctx := context.Background()

	_, err := storage.Save(ctx, strings.NewReader("a"), "thumbnails/f1/thumb_150x150.jpg")
	require.NoError(t, err)
	_, err = storage.Save(ctx, strings.NewReader("b"), "thumbnails/f1/thumb_300x300.jpg")
	require.NoError(t, err)

	require.NoError(t, storage.DeleteDir(ctx, "thumbnails/f1"))
	assert.False(t, storage.Exists(ctx, "thumbnails/f1"))

	// Re-running cleanup on a missing directory is not an error.
	assert.NoError(t, storage.DeleteDir(ctx, "thumbnails/f1"))
}

func TestLocalStorage_URL(t *testing.T) {
	t.Parallel()

	storage, _ := newLocalStorage(t)

	assert.Equal(t, "/files/2025/03/07/a.jpg", storage.URL("2025/03/07/a.jpg"))
	assert.Equal(t, "/already/absolute.jpg", storage.URL("/already/absolute.jpg"))
}
