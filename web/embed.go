// Package web embeds the page template and static assets.
package web

import "embed"

//go:embed templates static
var FS embed.FS
