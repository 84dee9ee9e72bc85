package handlers

import (
	"embed"
	"html/template"
	"path"
	"time"

	"personal_blog/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"avatar": func(file string) string {
		return path.Join("/static", service.ProfilePicsDir, file)
	},
}

// mustParseTemplates parses every page and partial. Pages are addressed by
// file name, e.g. "home.html".
func mustParseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}
