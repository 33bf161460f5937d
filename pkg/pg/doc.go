// Package pg provides the PostgreSQL bootstrap layer shared by the
// Postgres-backed stores: pooled connectivity via pgx/v5, goose schema
// migrations from embedded filesystems, health checks, and error
// classification helpers.
//
// Store packages own their schemas. Each ships its migrations as an
// embed.FS and applies them through Migrate at startup:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, filemeta.Migrations, "migrations", "filemeta_schema_version", slog.Default()); err != nil {
//		return err
//	}
//
// The error helpers ([IsDuplicateKeyError], [ConstraintName],
// [IsNotFoundError]) let store code translate driver errors into
// domain sentinels without string matching.
package pg
