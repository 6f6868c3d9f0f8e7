// Package migrations embeds the SQL migration files applied at startup.
package migrations

import "embed"

// FS holds the embedded migration files, consumed through the iofs source
// driver.
//
//go:embed *.sql
var FS embed.FS
