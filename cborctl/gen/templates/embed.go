package templates

import "embed"

// FS exposes the template used to render shape tables.
//
//go:embed *.go.tpl
var FS embed.FS
