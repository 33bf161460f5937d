package filemeta

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filekit/filekit/pkg/pg"
)

// DB is the pgx query surface PostgresStore needs. *pgxpool.Pool satisfies
// it; tests may substitute a single connection or a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the durable Store backed by PostgreSQL.
//
// The dedup invariant is enforced at the schema level with a partial unique
// index on content_hash over live rows, so concurrent check-then-insert
// races surface as ErrDuplicateHash and the caller re-fetches the winner.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a store over an established pgx pool or
// compatible query surface. Run the package Migrations first.
func NewPostgresStore(db DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil db", ErrInvalidRecord)
	}
	return &PostgresStore{db: db}, nil
}

const recordColumns = `id, original_name, stored_name, storage_path, size, content_type,
	content_hash, category, description, owner_id, upload_time, last_access_time,
	download_count, deleted, delete_time, image_width, image_height, thumbnail_path`

func (s *PostgresStore) Create(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO file_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		record.ID, record.OriginalName, record.StoredName, record.StoragePath,
		record.Size, record.ContentType, record.ContentHash, record.Category,
		record.Description, record.OwnerID, record.UploadTime, record.LastAccessTime,
		record.DownloadCount, record.Deleted, record.DeleteTime,
		record.ImageWidth, record.ImageHeight, record.ThumbnailPath,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			if strings.Contains(pg.ConstraintName(err), "hash") {
				return fmt.Errorf("%w: %s", ErrDuplicateHash, record.ContentHash)
			}
			return fmt.Errorf("%w: %s", ErrDuplicateStoredName, record.StoredName)
		}
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Record, error) {
	return s.getOne(ctx, `SELECT `+recordColumns+` FROM file_records WHERE id = $1`, id)
}

func (s *PostgresStore) GetByHash(ctx context.Context, hash string) (*Record, error) {
	return s.getOne(ctx, `SELECT `+recordColumns+` FROM file_records WHERE content_hash = $1 AND NOT deleted`, hash)
}

func (s *PostgresStore) GetByStoredName(ctx context.Context, name string) (*Record, error) {
	return s.getOne(ctx, `SELECT `+recordColumns+` FROM file_records WHERE stored_name = $1`, name)
}

func (s *PostgresStore) Update(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE file_records SET
			original_name = $2, stored_name = $3, storage_path = $4, size = $5,
			content_type = $6, content_hash = $7, category = $8, description = $9,
			owner_id = $10, upload_time = $11, last_access_time = $12,
			download_count = $13, deleted = $14, delete_time = $15,
			image_width = $16, image_height = $17, thumbnail_path = $18
		WHERE id = $1`,
		record.ID, record.OriginalName, record.StoredName, record.StoragePath,
		record.Size, record.ContentType, record.ContentHash, record.Category,
		record.Description, record.OwnerID, record.UploadTime, record.LastAccessTime,
		record.DownloadCount, record.Deleted, record.DeleteTime,
		record.ImageWidth, record.ImageHeight, record.ThumbnailPath,
	)
	if err != nil {
		return fmt.Errorf("update file record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}
	return nil
}

func (s *PostgresStore) UpdateAccessStats(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE file_records
		SET download_count = download_count + 1, last_access_time = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update access stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) SetImageMeta(ctx context.Context, id string, width, height int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE file_records SET image_width = $2, image_height = $3 WHERE id = $1`,
		id, width, height)
	if err != nil {
		return fmt.Errorf("set image meta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) SetThumbnail(ctx context.Context, id string, path string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE file_records SET thumbnail_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE file_records SET deleted = TRUE, delete_time = $2
		WHERE id = $1 AND NOT deleted`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already deleted; deleting twice is a no-op.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Restore(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE file_records SET deleted = FALSE, delete_time = NULL
		WHERE id = $1 AND deleted`, id)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrNotDeleted, id)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM file_records WHERE owner_id = $1 AND NOT deleted`
	args := []any{ownerID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY upload_time DESC"
	query, args = applyPaging(query, args, filter)

	return s.getMany(ctx, query, args...)
}

func (s *PostgresStore) SearchByName(ctx context.Context, ownerID, query string, filter ListFilter) ([]*Record, error) {
	sql := `SELECT ` + recordColumns + ` FROM file_records
		WHERE owner_id = $1 AND NOT deleted AND original_name ILIKE '%' || $2 || '%'
		ORDER BY upload_time DESC`
	args := []any{ownerID, query}
	sql, args = applyPaging(sql, args, filter)

	return s.getMany(ctx, sql, args...)
}

func (s *PostgresStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM file_records WHERE owner_id = $1 AND NOT deleted`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by owner: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(size), 0) FROM file_records WHERE owner_id = $1 AND NOT deleted`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum size by owner: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	return s.getMany(ctx, `
		SELECT `+recordColumns+` FROM file_records
		WHERE deleted AND delete_time <= $1
		ORDER BY delete_time`, cutoff)
}

func (s *PostgresStore) HardDelete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM file_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hard delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) getOne(ctx context.Context, query string, args ...any) (*Record, error) {
	record, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query file record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) getMany(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return out, nil
}

func applyPaging(query string, args []any, filter ListFilter) (string, []any) {
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.OriginalName, &r.StoredName, &r.StoragePath, &r.Size,
		&r.ContentType, &r.ContentHash, &r.Category, &r.Description, &r.OwnerID,
		&r.UploadTime, &r.LastAccessTime, &r.DownloadCount, &r.Deleted,
		&r.DeleteTime, &r.ImageWidth, &r.ImageHeight, &r.ThumbnailPath,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
