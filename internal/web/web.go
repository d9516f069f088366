package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:embed templates static
var content embed.FS

// Options configures the web UI.
type Options struct {
	CookieSecure bool
}

// Server holds dependencies for web handlers.
type Server struct {
	wizard     *service.WizardService
	generation *service.GenerationService
	opts       Options
	templates  map[string]*template.Template
	funcMap    template.FuncMap
}

// NewRouter creates a new web router with all routes configured.
func NewRouter(wizard *service.WizardService, generation *service.GenerationService, opts Options) http.Handler {
	s := &Server{
		wizard:     wizard,
		generation: generation,
		opts:       opts,
	}

	// Parse all templates
	s.templates = s.parseTemplates()

	r := chi.NewRouter()

	// Static files
	staticFS, _ := fs.Sub(content, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessionCookie)

		// Wizard
		r.Get("/", s.handleWizard)
		r.Post("/fields/{key}", s.handleSetField)
		r.Post("/advanced", s.handleSetAdvanced)
		r.Post("/environments", s.handleAddEnvironment)
		r.Post("/environments/{index}/remove", s.handleRemoveEnvironment)
		r.Post("/environments/{index}/move", s.handleMoveEnvironment)
		r.Post("/environments/{index}/rename", s.handleRenameEnvironment)
		r.Post("/reset", s.handleReset)
		r.Post("/generate", s.handleGenerate)

		// Results
		r.Get("/results", s.handleResults)
		r.Post("/results/active", s.handleSelectFile)
		r.Get("/results/raw", s.handleRaw)
		r.Get("/results/archive", s.handleArchive)
		r.Post("/results/summary", s.handleSummary)
		r.Post("/results/summary/refresh", s.handleRefreshSummary)

		r.Post("/error/dismiss", s.handleDismissError)
	})

	return r
}

// parseTemplates parses all templates with custom functions.
func (s *Server) parseTemplates() map[string]*template.Template {
	s.funcMap = template.FuncMap{
		"join":  strings.Join,
		"lower": strings.ToLower,
		"dict":  dict,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
	}

	templates := make(map[string]*template.Template)

	// Read base template and components
	baseContent, _ := content.ReadFile("templates/base.html")
	flashContent, _ := content.ReadFile("templates/components/flash.html")
	selectContent, _ := content.ReadFile("templates/components/select.html")

	// Combine base with components
	baseWithComponents := string(baseContent) + string(flashContent) + string(selectContent)

	// Parse each page template separately with the base
	pageFiles, _ := fs.Glob(content, "templates/pages/*.html")
	for _, pagePath := range pageFiles {
		pageName := filepath.Base(pagePath)
		pageName = strings.TrimSuffix(pageName, ".html")

		pageContent, _ := content.ReadFile(pagePath)

		// Create new template for this page
		tmpl := template.New(pageName).Funcs(s.funcMap)
		tmpl, err := tmpl.Parse(baseWithComponents + string(pageContent))
		if err != nil {
			panic("failed to parse template " + pageName + ": " + err.Error())
		}

		templates[pageName] = tmpl
	}

	return templates
}

// dict creates a map from key-value pairs for use in templates.
func dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		m[key] = values[i+1]
	}
	return m
}

// PageData holds common data passed to all page templates.
type PageData struct {
	Title   string
	Active  string // Current nav item
	Flash   *FlashMessage
	Content any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}
