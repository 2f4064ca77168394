package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/menu"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
	"github.com/vince123890/website-kasir/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	nav       *menu.Engine
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *access.Identity
	Menu        []menu.Item
	Breadcrumb  []menu.Crumb
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// WithNavigation makes Page fill in the menu and breadcrumb.
func (e *Engine) WithNavigation(nav *menu.Engine) *Engine {
	e.nav = nav
	return e
}

// Page assembles TemplateData for r: the next flash, the caller and, when
// navigation is configured, its menu and breadcrumb.
func (e *Engine) Page(r *http.Request, title, csrfToken string, data any) TemplateData {
	td := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		User:        access.IdentityFrom(r.Context()),
		Data:        data,
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		td.Flash = sess.PopFlash()
	}
	if e != nil && e.nav != nil {
		ac := access.FromContext(r.Context())
		cur := route.CurrentFrom(r.Context())
		td.Menu = e.nav.Navigation(r.Context(), ac, cur)
		td.Breadcrumb = e.nav.Breadcrumb(ac, cur)
	}
	return td
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
