package diagnostics

import "embed"

// sqlSchemas is an embedded file system containing the SQL migration files
// for the diagnostics store, embedded at compile time for portability.
//
//go:embed migrations/*.sql
var sqlSchemas embed.FS
