package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the schema migrations for the users and
// password_reset_tokens tables so hosts can run them with their own
// migration tooling.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
