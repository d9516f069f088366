package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/bcnelson/cicd-wizard/internal/archive"
	"github.com/bcnelson/cicd-wizard/internal/catalog"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
	"github.com/go-chi/chi/v5"
)

// WizardData holds data for the wizard page.
type WizardData struct {
	View       *service.SessionView
	Catalog    catalog.Catalog
	Generator  string
	InProgress bool
}

// handleWizard renders the wizard page.
func (s *Server) handleWizard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(ctx)

	session, err := s.wizard.Get(ctx, id)
	if err != nil {
		s.renderError(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	data := PageData{
		Title:  "Configure pipeline",
		Active: "wizard",
		Flash:  flashFromQuery(r),
		Content: WizardData{
			View:       service.View(session),
			Catalog:    catalog.All(),
			Generator:  s.generation.GeneratorName(),
			InProgress: s.generation.InProgress(id),
		},
	}
	s.render(w, "base", "wizard", data)
}

// handleSetField updates one selection field.
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	key := chi.URLParam(r, "key")
	if _, err := s.wizard.SetField(r.Context(), sessionID(r.Context()), key, r.FormValue("value")); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSetAdvanced replaces the advanced options from the form.
func (s *Server) handleSetAdvanced(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	opts := domain.AdvancedOptions{
		DockerSupport:      checked(r, "dockerSupport"),
		GenerateDockerfile: checked(r, "generateDockerfile"),
		IaC:                checked(r, "iac"),
		ManualApproval:     checked(r, "manualApproval"),
		DeploymentStrategy: domain.DeploymentStrategy(r.FormValue("deploymentStrategy")),
		ArtifactPromotion:  checked(r, "artifactPromotion"),
	}
	if _, err := s.wizard.SetAdvanced(r.Context(), sessionID(r.Context()), opts); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAddEnvironment appends an environment.
func (s *Server) handleAddEnvironment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if _, err := s.wizard.AddEnvironment(r.Context(), sessionID(r.Context()), r.FormValue("name")); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRemoveEnvironment deletes an environment.
func (s *Server) handleRemoveEnvironment(w http.ResponseWriter, r *http.Request) {
	index := parseInt(chi.URLParam(r, "index"), -1)
	if _, err := s.wizard.RemoveEnvironment(r.Context(), sessionID(r.Context()), index); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleMoveEnvironment moves an environment up or down.
func (s *Server) handleMoveEnvironment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	index := parseInt(chi.URLParam(r, "index"), -1)
	direction := parseInt(r.FormValue("direction"), 0)
	if _, err := s.wizard.MoveEnvironment(r.Context(), sessionID(r.Context()), index, direction); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRenameEnvironment renames an environment.
func (s *Server) handleRenameEnvironment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	index := parseInt(chi.URLParam(r, "index"), -1)
	if _, err := s.wizard.RenameEnvironment(r.Context(), sessionID(r.Context()), index, r.FormValue("name")); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset restores the default selection.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if _, err := s.wizard.Reset(r.Context(), sessionID(r.Context())); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleGenerate runs the generator and shows the results page on success.
// Generator failures are stored on the session and shown on the wizard page.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.generation.Generate(ctx, sessionID(ctx)); err != nil {
		logging.FromContext(ctx).Info("generate rejected", "error", err)
		if errors.Is(err, domain.ErrGenerationInProgress) || !isGeneratorFailure(err) {
			redirectWithError(w, r, "/", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

// isGeneratorFailure reports errors that Generate records on the session.
func isGeneratorFailure(err error) bool {
	return errors.Is(err, domain.ErrGenerationFailed) ||
		errors.Is(err, domain.ErrMissingCredential) ||
		errors.Is(err, domain.ErrMalformedResponse)
}

// ResultsData holds data for the results page.
type ResultsData struct {
	View       *service.SessionView
	ActiveFile domain.GeneratedFile
	Summary    string
	HasSummary bool
	ArchiveURL string
}

// handleResults renders the generated files.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.wizard.Get(ctx, sessionID(ctx))
	if err != nil {
		s.renderError(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if session.Result == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	results := wizard.WrapResult(session.Result)
	active, _ := results.ActiveFile()
	summary, hasSummary := results.CachedSummary()

	data := PageData{
		Title:  "Generated templates",
		Active: "results",
		Flash:  flashFromQuery(r),
		Content: ResultsData{
			View:       service.View(session),
			ActiveFile: active,
			Summary:    summary,
			HasSummary: hasSummary,
			ArchiveURL: "/results/archive",
		},
	}
	s.render(w, "base", "results", data)
}

// handleSelectFile switches the active file.
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	if _, err := s.wizard.SelectFile(r.Context(), sessionID(r.Context()), r.FormValue("filename")); err != nil {
		redirectWithError(w, r, "/results", err)
		return
	}
	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

// rawClipboard writes copied text to the browser as plain text.
type rawClipboard struct {
	w http.ResponseWriter
}

func (c rawClipboard) WriteText(text string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := c.w.Write([]byte(text))
	return err
}

// handleRaw serves the active file's content unchanged.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	if err := s.wizard.CopyActive(r.Context(), sessionID(r.Context()), rawClipboard{w: w}); err != nil {
		s.renderError(w, err.Error(), http.StatusNotFound)
	}
}

// handleArchive downloads all files as a zip.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.generation.Archive(r.Context(), sessionID(r.Context()))
	if err != nil {
		redirectWithError(w, r, "/results", err)
		return
	}
	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// handleSummary fetches the explanation once and shows it.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if _, err := s.generation.Summary(r.Context(), sessionID(r.Context())); err != nil {
		redirectWithError(w, r, "/results", err)
		return
	}
	http.Redirect(w, r, "/results", http.StatusSeeOther)
}

// handleRefreshSummary discards the cached explanation and fetches a new one.
func (s *Server) handleRefreshSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := s.generation.InvalidateSummary(ctx, sessionID(ctx)); err != nil {
		redirectWithError(w, r, "/results", err)
		return
	}
	s.handleSummary(w, r)
}

// handleDismissError clears the stored error banner.
func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	if _, err := s.wizard.DismissError(r.Context(), sessionID(r.Context())); err != nil {
		redirectWithError(w, r, "/", err)
		return
	}
	back := r.Referer()
	if back == "" {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// flashFromQuery builds a flash message from the error query parameter.
func flashFromQuery(r *http.Request) *FlashMessage {
	if msg := r.URL.Query().Get("error"); msg != "" {
		return &FlashMessage{Type: "error", Message: msg}
	}
	return nil
}

// render renders a full page.
func (s *Server) render(w http.ResponseWriter, base, page string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Template not found: "+page, http.StatusInternalServerError)
		return
	}

	err := tmpl.ExecuteTemplate(w, base, data)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// renderError renders an error message.
func (s *Server) renderError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(`<div class="flash flash-error">` + template.HTMLEscapeString(message) + `</div>`))
}
