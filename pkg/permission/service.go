package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// OwnerLookup resolves a file's owner id. The owner implicitly holds every
// capability, so every check consults this before the grant table.
type OwnerLookup func(ctx context.Context, fileID string) (string, error)

// Service enforces the access-control rules on top of a grant Store:
// owner bypass, Manage-gated granting and revocation, and live validity
// checks independent of the expiry sweep.
type Service struct {
	store   Store
	ownerOf OwnerLookup
	clock   func() time.Time
	log     *slog.Logger
}

// ServiceOption configures Service construction.
type ServiceOption func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates the access-control service.
func NewService(store Store, ownerOf OwnerLookup, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if ownerOf == nil {
		return nil, fmt.Errorf("%w: owner lookup is nil", ErrOwnerLookup)
	}

	s := &Service{
		store:   store,
		ownerOf: ownerOf,
		clock:   time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Grant gives granteeID the capability on the file. The caller must be the
// file's owner or hold a valid Manage grant. Granting an identical
// already-active grant is a no-op.
func (s *Service) Grant(ctx context.Context, fileID, granteeID string, kind Kind, expiresAt *time.Time, grantedBy string) (*Grant, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if err := s.requireManage(ctx, fileID, grantedBy); err != nil {
		return nil, err
	}

	existing, err := s.store.FindActive(ctx, fileID, granteeID, kind)
	if err == nil {
		s.log.InfoContext(ctx, "grant already active, skipping",
			"file_id", fileID, "grantee_id", granteeID, "kind", string(kind))
		return existing, nil
	}
	if !errors.Is(err, ErrGrantNotFound) {
		return nil, err
	}

	grant := NewGrant(fileID, granteeID, kind, expiresAt, grantedBy, s.clock())
	if err := s.store.Create(ctx, grant); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission granted",
		"file_id", fileID, "grantee_id", granteeID, "kind", string(kind),
		"granted_by", grantedBy)
	return grant, nil
}

// Revoke deactivates granteeID's active grant of the given kind. The caller
// must be the file's owner or hold a valid Manage grant.
func (s *Service) Revoke(ctx context.Context, fileID, granteeID string, kind Kind, revokedBy string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	if err := s.requireManage(ctx, fileID, revokedBy); err != nil {
		return err
	}

	n, err := s.store.Revoke(ctx, fileID, granteeID, kind)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGrantNotFound
	}

	s.log.InfoContext(ctx, "permission revoked",
		"file_id", fileID, "grantee_id", granteeID, "kind", string(kind),
		"revoked_by", revokedBy)
	return nil
}

// HasPermission reports whether userID holds the capability on the file at
// the current instant. The file owner passes every check regardless of
// grant rows; everyone else needs an active, unexpired grant.
func (s *Service) HasPermission(ctx context.Context, fileID, userID string, kind Kind) (bool, error) {
	owner, err := s.ownerOf(ctx, fileID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrOwnerLookup, err)
	}
	if owner == userID {
		return true, nil
	}

	return s.store.HasValidGrant(ctx, fileID, userID, kind, s.clock())
}

// ListFileGrants returns the file's active grants. Owner-or-Manage only.
func (s *Service) ListFileGrants(ctx context.Context, fileID, requesterID string) ([]*Grant, error) {
	if err := s.requireManage(ctx, fileID, requesterID); err != nil {
		return nil, err
	}
	return s.store.ListActiveByFile(ctx, fileID)
}

// SweepExpired deactivates grants whose expiry has passed. Validity checks
// never depend on this having run; it only keeps the table tidy.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeactivateExpired(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.InfoContext(ctx, "deactivated expired grants", "count", n)
	}
	return n, nil
}

func (s *Service) requireManage(ctx context.Context, fileID, userID string) error {
	ok, err := s.HasPermission(ctx, fileID, userID, KindManage)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s requires manage on %s", ErrAccessDenied, userID, fileID)
	}
	return nil
}
