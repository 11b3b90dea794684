package api

import (
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templatesFS embed.FS

func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		// pct prints a percentage without rounding it.
		"pct": func(p float64) string {
			return strconv.FormatFloat(p, 'f', -1, 64)
		},
	}

	return template.New("base").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}
