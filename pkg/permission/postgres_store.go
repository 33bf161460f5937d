package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filekit/filekit/pkg/pg"
)

// DB is the pgx query surface PostgresStore needs. *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the durable Store backed by PostgreSQL. The one-active-
// grant-per-(file,grantee,kind) invariant is enforced with a partial unique
// index over active rows.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a store over an established pgx pool or
// compatible query surface. Run the package Migrations first.
func NewPostgresStore(db DB) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrStoreNil
	}
	return &PostgresStore{db: db}, nil
}

const grantColumns = `id, file_id, grantee_id, kind, granted_at, expires_at, active, granted_by`

func (s *PostgresStore) Create(ctx context.Context, grant *Grant) error {
	if grant == nil || grant.ID == "" || !grant.Kind.Valid() {
		return ErrInvalidGrant
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO permission_grants (`+grantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		grant.ID, grant.FileID, grant.GranteeID, string(grant.Kind),
		grant.GrantedAt, grant.ExpiresAt, grant.Active, grant.GrantedBy,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: active grant exists for (%s, %s, %s)",
				ErrInvalidGrant, grant.FileID, grant.GranteeID, grant.Kind)
		}
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActive(ctx context.Context, fileID, granteeID string, kind Kind) (*Grant, error) {
	grant, err := scanGrant(s.db.QueryRow(ctx, `
		SELECT `+grantColumns+` FROM permission_grants
		WHERE file_id = $1 AND grantee_id = $2 AND kind = $3 AND active`,
		fileID, granteeID, string(kind)))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("query grant: %w", err)
	}
	return grant, nil
}

func (s *PostgresStore) HasValidGrant(ctx context.Context, fileID, userID string, kind Kind, now time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM permission_grants
			WHERE file_id = $1 AND grantee_id = $2 AND kind = $3 AND active
			  AND (expires_at IS NULL OR expires_at > $4)
		)`, fileID, userID, string(kind), now).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check grant validity: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, fileID, granteeID string, kind Kind) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE permission_grants SET active = FALSE
		WHERE file_id = $1 AND grantee_id = $2 AND kind = $3 AND active`,
		fileID, granteeID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("revoke grant: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) RevokeAllForFile(ctx context.Context, fileID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE permission_grants SET active = FALSE
		WHERE file_id = $1 AND active`, fileID)
	if err != nil {
		return 0, fmt.Errorf("revoke file grants: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteByFile(ctx context.Context, fileID string) error {
	if _, err := s.db.Exec(ctx, `
		DELETE FROM permission_grants WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("delete file grants: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE permission_grants SET active = FALSE
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired grants: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) ListActiveByFile(ctx context.Context, fileID string) ([]*Grant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+grantColumns+` FROM permission_grants
		WHERE file_id = $1 AND active
		ORDER BY granted_at`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query file grants: %w", err)
	}
	defer rows.Close()

	var out []*Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return out, nil
}

func scanGrant(row pgx.Row) (*Grant, error) {
	var g Grant
	var kind string
	err := row.Scan(&g.ID, &g.FileID, &g.GranteeID, &kind,
		&g.GrantedAt, &g.ExpiresAt, &g.Active, &g.GrantedBy)
	if err != nil {
		return nil, err
	}
	g.Kind = Kind(kind)
	return &g, nil
}
