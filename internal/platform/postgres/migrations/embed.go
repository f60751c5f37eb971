// Package migrations embeds the goose SQL migrations that own the schema.
package migrations

import "embed"

// FS holds every migration file. Pass it to goose.SetBaseFS with Dir.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory inside FS that holds the migrations.
const Dir = "."
