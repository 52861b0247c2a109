package renderer

import (
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a new TemplateRenderer with templates parsed from views/
func New() *TemplateRenderer {
	return NewFromDir("views")
}

// NewFromDir parses the templates under dir
func NewFromDir(dir string) *TemplateRenderer {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	r.parseTemplates(strings.TrimRight(dir, "/"))
	return r
}

// Funcs are available to every template
var Funcs = template.FuncMap{
	"join": func(codes []int) string {
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, strconv.Itoa(code))
		}
		return strings.Join(parts, ", ")
	},
}

func (t *TemplateRenderer) parseTemplates(dir string) {
	// Pages share the layout and every partial they may embed
	parse := func(name, pageFile string) {
		t.Templates[name] = template.Must(template.New("base.html").Funcs(Funcs).ParseFiles(
			dir+"/layouts/base.html",
			dir+"/partials/analysis_panel.html",
			dir+"/partials/upload_status.html",
			dir+"/pages/"+pageFile,
		))
	}
	partial := func(name string) {
		t.Templates[name] = template.Must(template.New(name + ".html").Funcs(Funcs).ParseFiles(dir + "/partials/" + name + ".html"))
	}

	parse("upload", "upload.html")
	parse("result", "result.html")
	parse("history", "history.html")

	partial("analysis_panel")
	partial("upload_status")
}

// selfExecutingTemplates lists templates that execute their own named block instead of "base"
var selfExecutingTemplates = map[string]bool{
	"analysis_panel": true,
	"upload_status":  true,
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}

	// Templates that define their own named block execute that block directly
	if selfExecutingTemplates[name] {
		return tmpl.ExecuteTemplate(w, name, data)
	}
	// All other templates (pages with layout) execute the "base" block
	return tmpl.ExecuteTemplate(w, "base", data)
}
