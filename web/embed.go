// Package web holds the server-rendered pages and their assets.
package web

import "embed"

// Templates holds layouts, partials and pages, each defining its own name.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static is served under /static.
//
//go:embed static/css/*.css
var Static embed.FS
