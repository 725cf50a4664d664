package templates

import (
	"embed"
	"html/template"
)

//go:embed html/*.html
var fs embed.FS

// Load parses every page together with the shared layout blocks.
// Pages are looked up by file name, e.g. "rezerwuj.html".
func Load() (*template.Template, error) {
	return template.ParseFS(fs, "html/*.html")
}
