// Package web provides embedded static assets and templates for the web application.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templatesFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Templates returns the HTML templates rooted at the templates directory.
func Templates() fs.FS {
	return mustSub(templatesFS, "templates")
}

// Static returns the static assets (CSS) rooted at the static directory.
func Static() fs.FS {
	return mustSub(staticFS, "static")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
