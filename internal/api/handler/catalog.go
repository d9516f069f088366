package handler

import (
	"net/http"
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/catalog"
	"github.com/bcnelson/cicd-wizard/internal/domain"
)

// CatalogHandler serves the static option lists.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Get returns every option list.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.All())
}

// Resources returns the target resources offered on the cloud given in the
// query string, or all of them when it is omitted.
func (h *CatalogHandler) Resources(w http.ResponseWriter, r *http.Request) {
	var cloud domain.CloudPlatform
	if v := strings.TrimSpace(r.URL.Query().Get("cloud")); v != "" {
		c, ok := domain.ParseCloudPlatform(v)
		if !ok {
			respondStandardError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput,
				"unknown cloud "+v, "cloud", nil)
			return
		}
		cloud = c
	}
	respondJSON(w, http.StatusOK, catalog.AvailableTargetResources(cloud))
}
