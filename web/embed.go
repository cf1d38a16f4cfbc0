package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

// Templates parses the page templates embedded in the binary.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templates, "templates/*.html")
}

// PageTemplate is the name of the single page.
const PageTemplate = "index.html"
