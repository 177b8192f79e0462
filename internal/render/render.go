package render

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

// Renderer renders a named HTML view. The actual template files are an
// external collaborator, loaded from a configured directory, so handlers
// only ever depend on this interface.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any)
}

type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer(templatesGlob string) (*TemplateRenderer, error) {
	templates, err := template.ParseGlob(templatesGlob)
	if err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", templatesGlob, err)
	}
	return &TemplateRenderer{templates: templates}, nil
}

// NewTemplateRendererFromTemplates is used in tests, where views come from
// inline template definitions instead of files on disk.
func NewTemplateRendererFromTemplates(templates *template.Template) *TemplateRenderer {
	return &TemplateRenderer{templates: templates}
}

func (tr *TemplateRenderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", pkg.ContentType.HTML)
	if err := tr.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
