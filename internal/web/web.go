// Package web holds the server-rendered HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// Static returns the asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
	"letter": func(i int) string {
		return string(rune('A' + i))
	},
	"optionClass": func(s quiz.OptionState) string {
		return "opt opt-" + string(s)
	},
	"isComplete": func(s quiz.Status) bool {
		return s == quiz.StatusComplete
	},
}
