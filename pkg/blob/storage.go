package blob

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object describes a stored blob.
type Object struct {
	Path string // Path relative to the storage root
	Size int64  // Bytes written
}

// Storage is the byte-level backend shared by uploads and derived artifacts.
// Implementations must confine all paths to their configured root and must
// not leave partial objects behind on failed writes.
type Storage interface {
	// Save writes the reader's content under path, creating parent
	// directories as needed.
	Save(ctx context.Context, r io.Reader, path string) (*Object, error)
	// Open returns a reader over the object's content. The caller closes it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a single object.
	Delete(ctx context.Context, path string) error
	// DeleteDir recursively removes a directory prefix and its contents.
	DeleteDir(ctx context.Context, path string) error
	// Exists checks whether an object is present.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for an object.
	URL(path string) string
}

// UniqueName generates a collision-resistant stored name preserving the
// original extension: a 32-char uuid hex plus the lowercased extension.
func UniqueName(originalName string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" && ext != "." {
		return name + ext
	}
	return name
}

// DatePath places a stored name under a yyyy/mm/dd partition so that no
// single directory accumulates every upload.
func DatePath(now time.Time, storedName string) string {
	return path.Join(now.Format("2006/01/02"), storedName)
}
