package permission

import (
	"context"
	"time"
)

// Store is the durable backend for permission grants.
type Store interface {
	// Create persists a new grant row.
	Create(ctx context.Context, grant *Grant) error
	// FindActive returns the active grant for (fileID, granteeID, kind),
	// or ErrGrantNotFound. Expiry is not considered here; callers check
	// validity with ValidAt.
	FindActive(ctx context.Context, fileID, granteeID string, kind Kind) (*Grant, error)
	// HasValidGrant reports whether an active, unexpired grant exists at
	// the given instant. Computed live, never from the sweep's output.
	HasValidGrant(ctx context.Context, fileID, userID string, kind Kind, now time.Time) (bool, error)
	// Revoke deactivates the matching active grant(s) and reports how many
	// rows changed.
	Revoke(ctx context.Context, fileID, granteeID string, kind Kind) (int64, error)
	// RevokeAllForFile deactivates every active grant on the file.
	RevokeAllForFile(ctx context.Context, fileID string) (int64, error)
	// DeleteByFile hard-deletes all grant rows for the file. Used by the
	// retention reaper when a file record is physically removed.
	DeleteByFile(ctx context.Context, fileID string) error
	// DeactivateExpired flips active=false on rows whose expiry has passed.
	// A cleanup optimization only: validity checks never depend on it.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	// ListActiveByFile returns the file's active grants, oldest first.
	ListActiveByFile(ctx context.Context, fileID string) ([]*Grant, error)
}
