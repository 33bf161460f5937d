package filemeta

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is the durable metadata for one stored file.
//
// Among non-deleted records the content hash is unique: uploading
// byte-identical content returns the existing live record instead of
// creating a duplicate. StoredName is unique unconditionally.
type Record struct {
	ID             string
	OriginalName   string
	StoredName     string
	StoragePath    string
	Size           int64
	ContentType    string
	ContentHash    string
	Category       string
	Description    string
	OwnerID        string
	UploadTime     time.Time
	LastAccessTime time.Time
	DownloadCount  int64
	Deleted        bool
	DeleteTime     *time.Time
	ImageWidth     int
	ImageHeight    int
	ThumbnailPath  string
}

// NewRecord builds a record for a freshly uploaded file, stamping the
// upload and access timestamps at construction time.
func NewRecord(originalName, storedName, storagePath, contentType, contentHash, category, description, ownerID string, size int64, now time.Time) *Record {
	return &Record{
		ID:             uuid.NewString(),
		OriginalName:   originalName,
		StoredName:     storedName,
		StoragePath:    storagePath,
		Size:           size,
		ContentType:    contentType,
		ContentHash:    contentHash,
		Category:       category,
		Description:    description,
		OwnerID:        ownerID,
		UploadTime:     now,
		LastAccessTime: now,
	}
}

// IsImage reports whether the record's declared content type is an image.
func (r *Record) IsImage() bool {
	return strings.HasPrefix(r.ContentType, "image/")
}

// MarkDeleted flips the record into the soft-deleted state.
func (r *Record) MarkDeleted(now time.Time) {
	r.Deleted = true
	t := now
	r.DeleteTime = &t
}

// Restore returns a soft-deleted record to the active state.
func (r *Record) Restore() {
	r.Deleted = false
	r.DeleteTime = nil
}

// Clone returns a deep copy, so callers can hand records across goroutines
// without aliasing store-internal state.
func (r *Record) Clone() *Record {
	cp := *r
	if r.DeleteTime != nil {
		t := *r.DeleteTime
		cp.DeleteTime = &t
	}
	return &cp
}
