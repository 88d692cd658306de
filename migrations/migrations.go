// Package migrations embeds the schema owned by the purchases service.
// The videos and users tables are read-only here and migrated by their
// owning services.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
