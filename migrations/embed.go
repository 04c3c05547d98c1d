// Package migrations embeds the goose SQL migrations for the run history store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
