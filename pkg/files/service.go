package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/filekit/filekit/pkg/blob"
	"github.com/filekit/filekit/pkg/cache"
	"github.com/filekit/filekit/pkg/filemeta"
	"github.com/filekit/filekit/pkg/hotlink"
	"github.com/filekit/filekit/pkg/imaging"
	"github.com/filekit/filekit/pkg/permission"
	"github.com/filekit/filekit/pkg/validate"
)

// AccessControl is the permission surface the service needs.
// *permission.Service satisfies it.
type AccessControl interface {
	HasPermission(ctx context.Context, fileID, userID string, kind permission.Kind) (bool, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// GrantStore is the grant-row surface needed for the reaper's cascade.
// Any permission.Store satisfies it.
type GrantStore interface {
	DeleteByFile(ctx context.Context, fileID string) error
}

// Enqueuer submits background tasks. *taskqueue.Enqueuer satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any) error
}

// Deps are the collaborators the service orchestrates.
type Deps struct {
	Store     filemeta.Store
	Access    AccessControl
	Grants    GrantStore
	Storage   blob.Storage
	Validator *validate.Validator
	Tokens    *hotlink.Issuer
	Enqueuer  Enqueuer
}

// Service implements the file-management core: upload with
// content-addressed dedup, permission-checked download, soft
// delete/restore, and the async image pipeline.
type Service struct {
	store     filemeta.Store
	access    AccessControl
	grants    GrantStore
	storage   blob.Storage
	validator *validate.Validator
	tokens    *hotlink.Issuer
	enqueuer  Enqueuer
	cache     *cache.TTLCache[string, *filemeta.Record]
	hasher    Hasher
	clock     func() time.Time
	log       *slog.Logger
	config    Config
}

// Option configures Service construction.
type Option func(*Service)

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHasher overrides the content hasher. Defaults to SHA256Hasher.
func WithHasher(h Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// NewService creates the file service.
func NewService(deps Deps, config Config, opts ...Option) (*Service, error) {
	switch {
	case deps.Store == nil, deps.Access == nil, deps.Grants == nil,
		deps.Storage == nil, deps.Validator == nil, deps.Tokens == nil,
		deps.Enqueuer == nil:
		return nil, ErrDependencyNil
	}
	if config.RetentionPeriod <= 0 || config.CompressQuality < 1 || config.CompressQuality > 100 {
		return nil, ErrInvalidConfig
	}
	if config.InfoCacheSize <= 0 {
		config.InfoCacheSize = 1024
	}
	if config.InfoCacheTTL <= 0 {
		config.InfoCacheTTL = 5 * time.Minute
	}

	infoCache := cache.New[string, *filemeta.Record](config.InfoCacheSize, config.InfoCacheTTL)

	s := &Service{
		store:     deps.Store,
		access:    deps.Access,
		grants:    deps.Grants,
		storage:   deps.Storage,
		validator: deps.Validator,
		tokens:    deps.Tokens,
		enqueuer:  deps.Enqueuer,
		cache:     infoCache,
		hasher:    SHA256Hasher,
		clock:     time.Now,
		log:       slog.Default(),
		config:    config,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UploadInput carries one upload's content and metadata. The owner id is
// assumed already authenticated by the caller.
type UploadInput struct {
	Content      []byte
	OriginalName string
	ContentType  string
	Category     string
	Description  string
	OwnerID      string
}

// Upload validates, deduplicates and stores one file.
//
// Byte-identical content resolves to the existing live record: no new
// bytes, no new row. Note the returned record keeps its original owner,
// which may differ from the uploader (content is deduplicated globally).
// Image uploads get width/height extracted inline, plus asynchronous
// thumbnail generation and, above the size threshold, compression; the
// call never waits for image processing.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*filemeta.Record, error) {
	if err := s.validator.Validate(ctx, in.Content, in.OriginalName, in.ContentType, in.OwnerID); err != nil {
		return nil, err
	}

	hash := s.hasher(in.Content)

	if existing, err := s.store.GetByHash(ctx, hash); err == nil {
		if existing.OwnerID != in.OwnerID {
			s.log.InfoContext(ctx, "dedup hit across owners",
				"file_id", existing.ID, "owner_id", existing.OwnerID, "uploader_id", in.OwnerID)
		}
		return existing, nil
	} else if !errors.Is(err, filemeta.ErrNotFound) {
		return nil, err
	}

	now := s.clock()
	storedName := blob.UniqueName(in.OriginalName)
	storagePath := blob.DatePath(now, storedName)

	obj, err := s.storage.Save(ctx, bytes.NewReader(in.Content), storagePath)
	if err != nil {
		return nil, fmt.Errorf("store bytes: %w", err)
	}

	record := filemeta.NewRecord(
		in.OriginalName, storedName, obj.Path, in.ContentType, hash,
		in.Category, in.Description, in.OwnerID, obj.Size, now,
	)
	if record.IsImage() {
		if w, h, err := imaging.Dimensions(bytes.NewReader(in.Content)); err == nil {
			record.ImageWidth = w
			record.ImageHeight = h
		}
	}

	if err := s.store.Create(ctx, record); err != nil {
		// Lost a dedup race: another upload of identical content landed
		// between the lookup and the insert. Discard our bytes and return
		// the winner.
		if errors.Is(err, filemeta.ErrDuplicateHash) {
			if delErr := s.storage.Delete(ctx, obj.Path); delErr != nil {
				s.log.WarnContext(ctx, "failed to remove losing upload's bytes",
					"path", obj.Path, "error", delErr)
			}
			return s.store.GetByHash(ctx, hash)
		}
		if delErr := s.storage.Delete(ctx, obj.Path); delErr != nil {
			s.log.WarnContext(ctx, "failed to remove orphaned bytes after insert failure",
				"path", obj.Path, "error", delErr)
		}
		return nil, fmt.Errorf("persist record: %w", err)
	}

	if record.IsImage() {
		s.scheduleImageTasks(ctx, record)
	}

	s.log.InfoContext(ctx, "file uploaded",
		"file_id", record.ID, "owner_id", record.OwnerID,
		"size", record.Size, "content_type", record.ContentType)
	return record, nil
}

func (s *Service) scheduleImageTasks(ctx context.Context, record *filemeta.Record) {
	if record.Size > s.config.CompressThreshold {
		if err := s.enqueuer.Enqueue(ctx, CompressTask{FileID: record.ID}); err != nil {
			s.log.ErrorContext(ctx, "failed to schedule compression",
				"file_id", record.ID, "error", err)
		}
	}
	if err := s.enqueuer.Enqueue(ctx, ThumbnailTask{FileID: record.ID}); err != nil {
		s.log.ErrorContext(ctx, "failed to schedule thumbnails",
			"file_id", record.ID, "error", err)
	}
}

// Download streams a file's bytes after a permission check. Stats updates
// are best-effort; a record whose bytes are gone fails as not-found but is
// logged as a data-integrity event.
func (s *Service) Download(ctx context.Context, fileID, requesterID string) (io.ReadCloser, *filemeta.Record, error) {
	record, err := s.liveRecord(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.requirePermission(ctx, fileID, requesterID, permission.KindRead); err != nil {
		return nil, nil, err
	}

	if err := s.store.UpdateAccessStats(ctx, fileID, s.clock()); err != nil {
		s.log.WarnContext(ctx, "failed to update access stats",
			"file_id", fileID, "error", err)
	} else {
		s.cache.Delete(fileID)
	}

	rc, err := s.storage.Open(ctx, record.StoragePath)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			s.log.ErrorContext(ctx, "data integrity: record exists but bytes are missing",
				"file_id", fileID, "path", record.StoragePath)
			return nil, nil, fmt.Errorf("%w: %w: %s", ErrNotFound, ErrMissingBytes, fileID)
		}
		return nil, nil, fmt.Errorf("open bytes: %w", err)
	}

	return rc, record, nil
}

// GetInfo returns a file's metadata, served from a short-lived cache that
// write paths invalidate.
func (s *Service) GetInfo(ctx context.Context, fileID, requesterID string) (*filemeta.Record, error) {
	if cached, ok := s.cache.Get(fileID); ok {
		if err := s.requirePermission(ctx, fileID, requesterID, permission.KindRead); err != nil {
			return nil, err
		}
		return cached.Clone(), nil
	}

	record, err := s.liveRecord(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, fileID, requesterID, permission.KindRead); err != nil {
		return nil, err
	}

	s.cache.Set(fileID, record.Clone())
	return record, nil
}

// Delete soft-deletes the file: the record is hidden and its bytes
// untouched until the retention reaper runs. Requires ownership or a
// Delete grant.
func (s *Service) Delete(ctx context.Context, fileID, requesterID string) error {
	if _, err := s.liveRecord(ctx, fileID); err != nil {
		return err
	}
	if err := s.requirePermission(ctx, fileID, requesterID, permission.KindDelete); err != nil {
		return err
	}

	if err := s.store.SoftDelete(ctx, fileID, s.clock()); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	s.cache.Delete(fileID)

	s.log.InfoContext(ctx, "file deleted", "file_id", fileID, "requester_id", requesterID)
	return nil
}

// Restore returns a soft-deleted file to the active state. Requires
// ownership or a Delete grant; fails ErrNotDeleted on a live file.
func (s *Service) Restore(ctx context.Context, fileID, requesterID string) error {
	record, err := s.store.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, filemeta.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, fileID)
		}
		return err
	}

	if err := s.requirePermission(ctx, fileID, requesterID, permission.KindDelete); err != nil {
		return err
	}

	if !record.Deleted {
		return fmt.Errorf("%w: %s", ErrNotDeleted, fileID)
	}

	if err := s.store.Restore(ctx, fileID); err != nil {
		if errors.Is(err, filemeta.ErrNotDeleted) {
			return fmt.Errorf("%w: %s", ErrNotDeleted, fileID)
		}
		return fmt.Errorf("restore: %w", err)
	}
	s.cache.Delete(fileID)

	s.log.InfoContext(ctx, "file restored", "file_id", fileID, "requester_id", requesterID)
	return nil
}

// ListUserFiles returns the owner's live files, newest first, optionally
// filtered by category.
func (s *Service) ListUserFiles(ctx context.Context, ownerID string, filter filemeta.ListFilter) ([]*filemeta.Record, error) {
	return s.store.ListByOwner(ctx, ownerID, filter)
}

// SearchFiles returns the owner's live files whose original name contains
// the query.
func (s *Service) SearchFiles(ctx context.Context, ownerID, query string, filter filemeta.ListFilter) ([]*filemeta.Record, error) {
	return s.store.SearchByName(ctx, ownerID, query, filter)
}

// Stats summarizes one owner's live files.
type Stats struct {
	FileCount  int64
	TotalSize  int64
	ImageCount int64
}

// UserStats aggregates over the owner's live files.
func (s *Service) UserStats(ctx context.Context, ownerID string) (*Stats, error) {
	count, err := s.store.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	size, err := s.store.SumSizeByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListByOwner(ctx, ownerID, filemeta.ListFilter{})
	if err != nil {
		return nil, err
	}
	var images int64
	for _, r := range records {
		if r.IsImage() {
			images++
		}
	}

	return &Stats{FileCount: count, TotalSize: size, ImageCount: images}, nil
}

// IssueDownloadToken mints a short-lived token binding the file to the
// requesting client's fingerprint, so download links cannot be hotlinked
// from third-party pages.
func (s *Service) IssueDownloadToken(ctx context.Context, fileID, requesterID, fingerprint string) (string, error) {
	if _, err := s.liveRecord(ctx, fileID); err != nil {
		return "", err
	}
	if err := s.requirePermission(ctx, fileID, requesterID, permission.KindRead); err != nil {
		return "", err
	}
	return s.tokens.Issue(fileID, fingerprint)
}

// VerifyDownloadToken checks a token against the file and fingerprint it
// must be bound to.
func (s *Service) VerifyDownloadToken(token, fileID, fingerprint string) error {
	return s.tokens.Verify(token, fileID, fingerprint)
}

// DownloadURL returns the public URL for the file's original bytes.
func (s *Service) DownloadURL(record *filemeta.Record) string {
	return s.storage.URL(record.StoragePath)
}

// ThumbnailURL returns the public URL of the primary thumbnail, or empty
// when none has been generated yet.
func (s *Service) ThumbnailURL(record *filemeta.Record) string {
	if record.ThumbnailPath == "" {
		return ""
	}
	return s.storage.URL(record.ThumbnailPath)
}

// ReapDeleted hard-deletes files soft-deleted longer than the retention
// period: original bytes, derived artifacts, grant rows and finally the
// record. Returns how many files were reaped.
func (s *Service) ReapDeleted(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(-s.config.RetentionPeriod)

	expired, err := s.store.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired deletions: %w", err)
	}

	reaped := 0
	for _, record := range expired {
		if err := s.reapOne(ctx, record); err != nil {
			s.log.ErrorContext(ctx, "failed to reap deleted file",
				"file_id", record.ID, "error", err)
			continue
		}
		reaped++
	}

	if reaped > 0 {
		s.log.InfoContext(ctx, "reaped deleted files", "count", reaped)
	}
	return reaped, nil
}

func (s *Service) reapOne(ctx context.Context, record *filemeta.Record) error {
	if err := s.storage.Delete(ctx, record.StoragePath); err != nil &&
		!errors.Is(err, blob.ErrObjectNotFound) {
		return fmt.Errorf("delete bytes: %w", err)
	}
	if err := s.storage.DeleteDir(ctx, compressedDir(record.ID)); err != nil {
		return fmt.Errorf("delete compressed artifacts: %w", err)
	}
	if err := s.storage.DeleteDir(ctx, thumbnailDir(record.ID)); err != nil {
		return fmt.Errorf("delete thumbnails: %w", err)
	}
	if err := s.grants.DeleteByFile(ctx, record.ID); err != nil {
		return fmt.Errorf("cascade grants: %w", err)
	}
	if err := s.store.HardDelete(ctx, record.ID); err != nil {
		return fmt.Errorf("hard delete record: %w", err)
	}
	s.cache.Delete(record.ID)
	return nil
}

// liveRecord loads a record, mapping missing and soft-deleted uniformly to
// ErrNotFound.
func (s *Service) liveRecord(ctx context.Context, fileID string) (*filemeta.Record, error) {
	record, err := s.store.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, filemeta.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fileID)
		}
		return nil, err
	}
	if record.Deleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileID)
	}
	return record, nil
}

func (s *Service) requirePermission(ctx context.Context, fileID, userID string, kind permission.Kind) error {
	ok, err := s.access.HasPermission(ctx, fileID, userID, kind)
	if err != nil {
		return fmt.Errorf("permission check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s lacks %s on %s", ErrAccessDenied, userID, kind, fileID)
	}
	return nil
}

func compressedDir(fileID string) string {
	return path.Join("compressed", fileID)
}

func thumbnailDir(fileID string) string {
	return path.Join("thumbnails", fileID)
}
