package migrations

import "embed"

// Files holds the numbered schema scripts. db.OpenSQLite applies the pending
// ones in version order.
//
//go:embed *.sql
var Files embed.FS
