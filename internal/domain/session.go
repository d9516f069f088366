package domain

import "time"

// GeneratedFile is one file returned by the generator. Content is never
// modified by this system.
type GeneratedFile struct {
	Filename    string `json:"filename" yaml:"filename"`
	Content     string `json:"content" yaml:"content"`
	Description string `json:"description" yaml:"description"`
}

// Result holds the files from one successful generation and the state of
// viewing them.
type Result struct {
	GenerationID string          `json:"generationId"`
	Files        []GeneratedFile `json:"files"`
	Active       string          `json:"active"`
	Summary      *string         `json:"summary,omitempty"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Session is a single wizard run owned by one browser or API client.
type Session struct {
	ID        string         `json:"id" db:"id"`
	Selection SelectionState `json:"selection" db:"-"`
	Result    *Result        `json:"result,omitempty" db:"-"`
	LastError string         `json:"lastError,omitempty" db:"last_error"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// SetFieldRequest is the request body for changing one selection field.
type SetFieldRequest struct {
	Value string `json:"value"`
}

// AddEnvironmentRequest is the request body for appending an environment.
type AddEnvironmentRequest struct {
	Name string `json:"name"`
}

// RenameEnvironmentRequest is the request body for renaming an environment.
type RenameEnvironmentRequest struct {
	Name string `json:"name"`
}

// MoveEnvironmentRequest is the request body for reordering an environment.
// Direction must be -1 or +1.
type MoveEnvironmentRequest struct {
	Direction int `json:"direction"`
}

// SelectFileRequest is the request body for switching the active file.
type SelectFileRequest struct {
	Filename string `json:"filename"`
}

// SummaryResponse is returned by the explanation endpoint.
type SummaryResponse struct {
	GenerationID string `json:"generationId"`
	Summary      string `json:"summary"`
	Cached       bool   `json:"cached"`
}

// ExportResponse is returned after uploading the archive.
type ExportResponse struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Files = make([]GeneratedFile, len(r.Files))
	copy(out.Files, r.Files)
	if r.Summary != nil {
		s := *r.Summary
		out.Summary = &s
	}
	return &out
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Selection = s.Selection.Clone()
	out.Result = s.Result.Clone()
	return &out
}
