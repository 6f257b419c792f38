// Package migrations embeds the SQL schema migrations for each supported driver.
package migrations

import "embed"

// FS holds one directory of migrations per database driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
