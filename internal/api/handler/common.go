package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/validation"
	"github.com/go-chi/chi/v5"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondStandardError writes a JSON error response in the standard envelope.
func respondStandardError(w http.ResponseWriter, status int, code, message, field string, details map[string]any) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{
			Code:    code,
			Message: message,
			Field:   field,
			Details: details,
		},
	})
}

// respondError writes a JSON error response with a code derived from status.
func respondError(w http.ResponseWriter, status int, message string) {
	code := domain.ErrCodeInternalError
	switch status {
	case http.StatusBadRequest:
		code = domain.ErrCodeInvalidInput
	case http.StatusNotFound:
		code = domain.ErrCodeResourceNotFound
	}
	respondStandardError(w, status, code, message, "", nil)
}

// handleError converts domain errors to HTTP errors.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs     validation.ValidationErrors
		configErr *domain.ConfigError
		provErr   *domain.ProviderError
	)

	switch {
	case errors.As(err, &verrs):
		respondValidationErrors(w, verrs)
	case errors.Is(err, domain.ErrNoResult):
		respondStandardError(w, http.StatusNotFound, domain.ErrCodeNoResult, "no generated files", "", nil)
	case errors.Is(err, domain.ErrNotFound):
		respondStandardError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, err.Error(), "", nil)
	case errors.Is(err, domain.ErrIncompleteSelection), errors.Is(err, domain.ErrIncompatibleSelection):
		respondStandardError(w, http.StatusUnprocessableEntity, domain.ErrCodeValidationError, err.Error(), "", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		respondStandardError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, err.Error(), "", nil)
	case errors.Is(err, domain.ErrGenerationInProgress):
		respondStandardError(w, http.StatusConflict, domain.ErrCodeInProgress, err.Error(), "", nil)
	case errors.As(err, &configErr):
		respondStandardError(w, http.StatusServiceUnavailable, domain.ErrCodeConfiguration, configErr.Error(), "", map[string]any{
			"variable": configErr.Variable,
		})
	case errors.Is(err, domain.ErrArchiveDisabled):
		respondStandardError(w, http.StatusNotImplemented, domain.ErrCodeArchiveDisabled, err.Error(), "", nil)
	case errors.As(err, &provErr):
		respondStandardError(w, http.StatusBadGateway, domain.ErrCodeGenerationFailed, provErr.Message, "", map[string]any{
			"provider": provErr.Provider,
		})
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrMalformedResponse):
		respondStandardError(w, http.StatusBadGateway, domain.ErrCodeGenerationFailed, err.Error(), "", nil)
	default:
		logging.FromContext(r.Context()).Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondValidationErrors writes a JSON response for selection validation
// failures.
func respondValidationErrors(w http.ResponseWriter, errs validation.ValidationErrors) {
	message := "selection is not valid"
	if len(errs) > 0 {
		message = errs[0].Error()
	}
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": domain.StandardError{
			Code:    domain.ErrCodeValidationError,
			Message: message,
		},
		"errors": errs,
	})
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// indexParam parses the {index} URL parameter.
func indexParam(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, false
	}
	return index, true
}
