// Package migrations holds the goose SQL migrations, embedded so the server
// and cmd/migrate apply the same schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
