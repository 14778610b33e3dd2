// Package db holds the SQL migrations for the books schema.
package db

import "embed"

// Migrations contains every goose migration under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory name inside Migrations.
const MigrationsDir = "migrations"
