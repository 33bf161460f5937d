package filemeta

import (
	"context"
	"time"
)

// ListFilter narrows and pages list queries. A zero Limit means no limit.
type ListFilter struct {
	Category string
	Offset   int
	Limit    int
}

// Store is the durable backend for file records.
//
// Lookup methods return ErrNotFound when no record matches. GetByHash only
// considers live (non-deleted) records, since the dedup invariant applies
// to live records alone.
type Store interface {
	// Create persists a new record. It returns ErrDuplicateHash when a live
	// record with the same content hash exists, and ErrDuplicateStoredName
	// on a stored-name collision.
	Create(ctx context.Context, record *Record) error

	GetByID(ctx context.Context, id string) (*Record, error)
	// GetByHash finds the live record with the given content hash.
	GetByHash(ctx context.Context, hash string) (*Record, error)
	GetByStoredName(ctx context.Context, name string) (*Record, error)

	// Update replaces the stored record's mutable fields.
	Update(ctx context.Context, record *Record) error
	// UpdateAccessStats increments the download counter and stamps the last
	// access time.
	UpdateAccessStats(ctx context.Context, id string, at time.Time) error
	// SetImageMeta records the image's pixel dimensions.
	SetImageMeta(ctx context.Context, id string, width, height int) error
	// SetThumbnail records the primary thumbnail path.
	SetThumbnail(ctx context.Context, id string, path string) error

	// SoftDelete marks the record deleted and stamps the delete time.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore clears the deleted flag. It returns ErrNotDeleted when the
	// record is live.
	Restore(ctx context.Context, id string) error

	// ListByOwner returns the owner's live records, newest first.
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*Record, error)
	// SearchByName returns the owner's live records whose original name
	// contains the query, case-insensitively.
	SearchByName(ctx context.Context, ownerID, query string, filter ListFilter) ([]*Record, error)
	// CountByOwner and SumSizeByOwner aggregate over live records.
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	SumSizeByOwner(ctx context.Context, ownerID string) (int64, error)

	// ListDeletedBefore returns records soft-deleted at or before the cutoff,
	// for the retention reaper.
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*Record, error)
	// HardDelete permanently removes the record row.
	HardDelete(ctx context.Context, id string) error
}
