package handler

import (
	"net/http"
	"strconv"

	"github.com/bcnelson/cicd-wizard/internal/archive"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/go-chi/chi/v5"
)

// GenerationHandler handles generation, result and archive endpoints.
type GenerationHandler struct {
	wizard     *service.WizardService
	generation *service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(wizard *service.WizardService, generation *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{wizard: wizard, generation: generation}
}

// Request previews the instruction and schema a generation would send.
func (h *GenerationHandler) Request(w http.ResponseWriter, r *http.Request) {
	req, err := h.generation.Request(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// Generate runs the generator for the session's selection.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	session, err := h.generation.Generate(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// Files returns the generated files and the active file name.
func (h *GenerationHandler) Files(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if session.Result == nil {
		handleError(w, r, domain.ErrNoResult)
		return
	}
	respondJSON(w, http.StatusOK, session.Result)
}

// SelectFile switches the active file.
func (h *GenerationHandler) SelectFile(w http.ResponseWriter, r *http.Request) {
	var req domain.SelectFileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.wizard.SelectFile(r.Context(), chi.URLParam(r, "session_id"), req.Filename)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.Result)
}

// responseClipboard writes copied text straight to the HTTP response.
type responseClipboard struct {
	w http.ResponseWriter
}

func (c responseClipboard) WriteText(text string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(http.StatusOK)
	_, err := c.w.Write([]byte(text))
	return err
}

// RawActive returns the active file's content exactly as generated.
func (h *GenerationHandler) RawActive(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.CopyActive(r.Context(), chi.URLParam(r, "session_id"), responseClipboard{w: w}); err != nil {
		handleError(w, r, err)
	}
}

// Archive downloads every generated file as one zip.
func (h *GenerationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	data, _, err := h.generation.Archive(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Export uploads the archive to the configured object store.
func (h *GenerationHandler) Export(w http.ResponseWriter, r *http.Request) {
	resp, err := h.generation.Export(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Summary returns the explanation of the generated files.
func (h *GenerationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.generation.Summary(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// InvalidateSummary drops the cached explanation.
func (h *GenerationHandler) InvalidateSummary(w http.ResponseWriter, r *http.Request) {
	session, err := h.generation.InvalidateSummary(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}
