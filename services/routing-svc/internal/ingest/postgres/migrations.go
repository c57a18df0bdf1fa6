package postgres

import "embed"

// Migrations embeds the goose migration set for the nodes/edges schema so
// the binary carries it without a separate deploy artifact.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the goose source directory name within Migrations.
const MigrationsDir = "migrations"
