package permission

import "embed"

// Migrations holds the schema migrations for the Postgres store, applied
// with pg.Migrate at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS
