// Package migrations embeds the PostgreSQL schema migrations into the binary.
package migrations

import (
	"embed"

	"github.com/tejusbharadwaj/agrotelemetry/internal/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
