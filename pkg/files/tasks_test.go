package files_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/files"
	"github.com/filekit/filekit/pkg/imaging"
)

func TestCompress_OversizedImageGetsCompressedVariant(t *testing.T) {
	t.Parallel()

	// Threshold of one byte forces the compression path for any image.
	f := newFixture(t, files.Config{
		CompressThreshold: 1,
		CompressQuality:   70,
		MaxImageWidth:     800,
		MaxImageHeight:    800,
	}, nil)
	ctx := context.Background()

	record, err := f.svc.Upload(ctx, pngUpload(t, "big.png", "alice", 1600, 1200))
	require.NoError(t, err)

	f.drainTasks(t)

	variant := "compressed/" + record.ID + "/" + record.StoredName
	require.True(t, f.storage.Exists(ctx, variant))

	// The variant respects the configured dimension bounds.
	rc, err := f.storage.Open(ctx, variant)
	require.NoError(t, err)
	defer rc.Close()
	w, h, err := imaging.Dimensions(rc)
	require.NoError(t, err)
	assert.LessOrEqual(t, w, 800)
	assert.LessOrEqual(t, h, 800)

	// The record now carries the compressed dimensions.
	got, err := f.store.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, w, got.ImageWidth)
	assert.Equal(t, h, got.ImageHeight)

	// Original bytes are untouched.
	orig, err := f.storage.Open(ctx, record.StoragePath)
	require.NoError(t, err)
	defer orig.Close()
	ow, oh, err := imaging.Dimensions(orig)
	require.NoError(t, err)
	assert.Equal(t, 1600, ow)
	assert.Equal(t, 1200, oh)
}

func TestTasks_StaleFileIDIsSkippedSilently(t *testing.T) {
	t.Parallel()

	f := newFixture(t, files.Config{}, nil)

	for _, h := range f.svc.TaskHandlers() {
		err := h.Handle(context.Background(), []byte(`{"file_id":"gone"}`))
		assert.NoError(t, err, "%s must treat a vanished file as a stale task", h.Name())
	}
}

func TestTasks_NonImageSchedulesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, files.Config{CompressThreshold: 1}, nil)
	ctx := context.Background()

	record, err := f.svc.Upload(ctx, textUpload("doc.txt", "alice", "plain text, above threshold"))
	require.NoError(t, err)

	assert.Empty(t, f.enqueuer.take(), "pipeline is for images only")

	rc, _, err := f.svc.Download(ctx, record.ID, "alice")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "plain text, above threshold", string(data))
}
