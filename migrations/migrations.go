// Package migrations embeds the goose SQL migrations so the server and seed
// tool can apply them without shipping files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
