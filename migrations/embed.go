// Package migrations embeds the SQL schema into the binary.
//
// Import it for its side effect wherever database.Migrate is called:
//
//	import _ "github.com/nerrad567/fleet-core/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/fleet-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
