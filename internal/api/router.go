package api

import (
	"log/slog"
	"net/http"

	"github.com/bcnelson/cicd-wizard/internal/api/handler"
	"github.com/bcnelson/cicd-wizard/internal/api/middleware"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/bcnelson/cicd-wizard/internal/web"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(
	logger *slog.Logger,
	wizardService *service.WizardService,
	generationService *service.GenerationService,
	webOpts web.Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount web UI (no Content-Type middleware - serves HTML)
	webRouter := web.NewRouter(wizardService, generationService, webOpts)
	r.Mount("/", webRouter)

	// API routes (JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)

		// Catalog
		catalogHandler := handler.NewCatalogHandler()
		r.Get("/catalog", catalogHandler.Get)
		r.Get("/catalog/resources", catalogHandler.Resources)

		// Sessions
		sessionHandler := handler.NewSessionHandler(wizardService)
		r.Post("/sessions", sessionHandler.Create)

		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Reset)

			// Selection
			r.Put("/fields/{key}", sessionHandler.SetField)
			r.Put("/advanced", sessionHandler.SetAdvanced)

			// Environments
			r.Post("/environments", sessionHandler.AddEnvironment)
			r.Put("/environments/{index}", sessionHandler.RenameEnvironment)
			r.Delete("/environments/{index}", sessionHandler.RemoveEnvironment)
			r.Post("/environments/{index}/move", sessionHandler.MoveEnvironment)

			r.Delete("/error", sessionHandler.DismissError)

			// Generation and results
			genHandler := handler.NewGenerationHandler(wizardService, generationService)
			r.Get("/request", genHandler.Request)
			r.Post("/generate", genHandler.Generate)
			r.Get("/files", genHandler.Files)
			r.Put("/files/active", genHandler.SelectFile)
			r.Get("/files/active/raw", genHandler.RawActive)
			r.Get("/archive", genHandler.Archive)
			r.Post("/archive/export", genHandler.Export)
			r.Get("/summary", genHandler.Summary)
			r.Delete("/summary", genHandler.InvalidateSummary)
		})
	})

	return r
}
