// Package migrations holds the versioned schema of the chat database.
package migrations

import "embed"

// FS holds the NNN_name.up.sql files, applied in file name order.
//
//go:embed *.up.sql
var FS embed.FS
