package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
)

// GenerateETag generates an ETag for a session based on its ID and updated_at timestamp.
// Format: "session-<id>-<updated_at_unix_nano>"
func GenerateETag(id string, updatedAt time.Time) string {
	return fmt.Sprintf(`"session-%s-%d"`, id, updatedAt.UnixNano())
}

// SetSessionETag sets the ETag header on the response.
func SetSessionETag(w http.ResponseWriter, session *domain.Session) {
	w.Header().Set("ETag", GenerateETag(session.ID, session.UpdatedAt))
}

// CheckIfMatch checks if the If-Match header matches the session's ETag.
// Returns true if:
//   - No If-Match header is present (ETag checking is optional)
//   - The If-Match header matches the current ETag
//
// Returns false if the If-Match header is present but doesn't match.
func CheckIfMatch(r *http.Request, session *domain.Session) bool {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" {
		return true
	}
	return ifMatch == GenerateETag(session.ID, session.UpdatedAt)
}

// RespondPreconditionFailed writes a 412 Precondition Failed response.
func RespondPreconditionFailed(w http.ResponseWriter, session *domain.Session) {
	respondStandardError(w, http.StatusPreconditionFailed, domain.ErrCodePreconditionFailed,
		"session has been modified", "", map[string]any{
			"currentETag": GenerateETag(session.ID, session.UpdatedAt),
		})
}
