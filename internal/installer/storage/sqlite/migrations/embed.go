package migrations

import "embed"

// FS contains embedded SQLite migrations for wizard storage.
//
//go:embed *.sql
var FS embed.FS
