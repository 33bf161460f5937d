package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/filekit/filekit/pkg/filemeta"
	"github.com/filekit/filekit/pkg/imaging"
	"github.com/filekit/filekit/pkg/taskqueue"
)

// CompressTask schedules asynchronous re-encoding of an oversized image.
type CompressTask struct {
	FileID string `json:"file_id"`
}

// ThumbnailTask schedules thumbnail generation for an image.
type ThumbnailTask struct {
	FileID string `json:"file_id"`
}

// TaskHandlers returns the handlers to register on the task worker. Both
// are idempotent: re-running overwrites prior outputs, and a file deleted
// since scheduling is skipped silently.
func (s *Service) TaskHandlers() []taskqueue.Handler {
	return []taskqueue.Handler{
		taskqueue.NewTaskHandler(func(ctx context.Context, task CompressTask) error {
			return s.compressImage(ctx, task.FileID)
		}),
		taskqueue.NewTaskHandler(func(ctx context.Context, task ThumbnailTask) error {
			return s.generateThumbnails(ctx, task.FileID)
		}),
	}
}

// RegisterJobs wires the maintenance sweeps onto a scheduler: the
// permission expiry sweep and the deleted-file reaper.
func (s *Service) RegisterJobs(scheduler *taskqueue.Scheduler) error {
	if err := scheduler.AddJob("permission-sweep", s.config.SweepInterval, func(ctx context.Context) error {
		_, err := s.access.SweepExpired(ctx)
		return err
	}); err != nil {
		return err
	}
	return scheduler.AddJob("deleted-file-reaper", s.config.ReapInterval, func(ctx context.Context) error {
		_, err := s.ReapDeleted(ctx)
		return err
	})
}

// compressImage re-encodes the original into compressed/<id>/, bounded by
// the configured quality and dimensions, and records the new dimensions.
// The original bytes are never overwritten.
func (s *Service) compressImage(ctx context.Context, fileID string) error {
	record, content, err := s.loadImage(ctx, fileID)
	if err != nil || record == nil {
		return err
	}

	var out bytes.Buffer
	if err := imaging.Compress(bytes.NewReader(content), &out, imaging.CompressOptions{
		Quality:   s.config.CompressQuality,
		MaxWidth:  s.config.MaxImageWidth,
		MaxHeight: s.config.MaxImageHeight,
	}); err != nil {
		return fmt.Errorf("compress %s: %w", fileID, err)
	}

	dst := path.Join(compressedDir(fileID), record.StoredName)
	if _, err := s.storage.Save(ctx, bytes.NewReader(out.Bytes()), dst); err != nil {
		return fmt.Errorf("store compressed variant: %w", err)
	}

	if w, h, err := imaging.Dimensions(bytes.NewReader(out.Bytes())); err == nil {
		if err := s.store.SetImageMeta(ctx, fileID, w, h); err != nil {
			s.log.WarnContext(ctx, "failed to record compressed dimensions",
				"file_id", fileID, "error", err)
		}
		s.cache.Delete(fileID)
	}

	s.log.InfoContext(ctx, "image compressed",
		"file_id", fileID, "original_size", record.Size, "compressed_size", out.Len())
	return nil
}

// generateThumbnails renders every configured preview size into
// thumbnails/<id>/ and records the first path as the primary thumbnail.
func (s *Service) generateThumbnails(ctx context.Context, fileID string) error {
	record, content, err := s.loadImage(ctx, fileID)
	if err != nil || record == nil {
		return err
	}

	var primary string
	for _, size := range s.config.thumbnailSizes() {
		var out bytes.Buffer
		if err := imaging.Thumbnail(bytes.NewReader(content), &out, size); err != nil {
			return fmt.Errorf("render %s thumbnail for %s: %w", size, fileID, err)
		}

		dst := path.Join(thumbnailDir(fileID), imaging.ThumbName(size))
		if _, err := s.storage.Save(ctx, bytes.NewReader(out.Bytes()), dst); err != nil {
			return fmt.Errorf("store %s thumbnail: %w", size, err)
		}
		if primary == "" {
			primary = dst
		}
	}

	if primary != "" {
		if err := s.store.SetThumbnail(ctx, fileID, primary); err != nil {
			s.log.WarnContext(ctx, "failed to record thumbnail path",
				"file_id", fileID, "error", err)
		}
		s.cache.Delete(fileID)
	}

	s.log.InfoContext(ctx, "thumbnails generated",
		"file_id", fileID, "count", len(s.config.thumbnailSizes()))
	return nil
}

// loadImage fetches the record and its bytes for the pipeline. A missing,
// deleted or non-image record returns (nil, nil, nil): the task is stale,
// not failed.
func (s *Service) loadImage(ctx context.Context, fileID string) (*filemeta.Record, []byte, error) {
	record, err := s.store.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, filemeta.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if record.Deleted || !record.IsImage() {
		return nil, nil, nil
	}

	rc, err := s.storage.Open(ctx, record.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open original bytes: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read original bytes: %w", err)
	}
	return record, content, nil
}
