// Package web bundles the single-page front end into the binary.
package web

import "embed"

//go:embed index.html
var FS embed.FS
