package handler

import (
	"net/http"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHandler handles wizard session endpoints.
type SessionHandler struct {
	wizard *service.WizardService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(wizard *service.WizardService) *SessionHandler {
	return &SessionHandler{wizard: wizard}
}

// respondSession writes the session view with its ETag.
func respondSession(w http.ResponseWriter, status int, session *domain.Session) {
	SetSessionETag(w, session)
	respondJSON(w, status, service.View(session))
}

// precondition loads the session and enforces If-Match. It writes the
// response and returns false when the request must stop.
func (h *SessionHandler) precondition(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "session_id")
	if r.Header.Get("If-Match") == "" {
		return id, true
	}
	session, err := h.wizard.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return "", false
	}
	if !CheckIfMatch(r, session) {
		RespondPreconditionFailed(w, session)
		return "", false
	}
	return id, true
}

// Create starts a new session with the default selection.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Start(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusCreated, session)
}

// Get gets a session by ID.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// Reset restores the default selection and drops generated files.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}
	session, err := h.wizard.Reset(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// SetField changes one single-choice field.
func (h *SessionHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req domain.SetFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.SetField(r.Context(), id, chi.URLParam(r, "key"), req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// SetAdvanced replaces the advanced options.
func (h *SessionHandler) SetAdvanced(w http.ResponseWriter, r *http.Request) {
	var req domain.AdvancedOptions
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.SetAdvanced(r.Context(), id, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// AddEnvironment appends an environment.
func (h *SessionHandler) AddEnvironment(w http.ResponseWriter, r *http.Request) {
	var req domain.AddEnvironmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.AddEnvironment(r.Context(), id, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusCreated, session)
}

// RemoveEnvironment deletes the environment at {index}.
func (h *SessionHandler) RemoveEnvironment(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.RemoveEnvironment(r.Context(), id, index)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// MoveEnvironment swaps the environment at {index} with a neighbour.
func (h *SessionHandler) MoveEnvironment(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	var req domain.MoveEnvironmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.MoveEnvironment(r.Context(), id, index, req.Direction)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// RenameEnvironment changes the name of the environment at {index}.
func (h *SessionHandler) RenameEnvironment(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	var req domain.RenameEnvironmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, ok := h.precondition(w, r)
	if !ok {
		return
	}

	session, err := h.wizard.RenameEnvironment(r.Context(), id, index, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}

// DismissError clears the session's last error.
func (h *SessionHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.DismissError(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondSession(w, http.StatusOK, session)
}
