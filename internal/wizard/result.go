package wizard

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
)

// Clipboard receives the raw content of the active file.
type Clipboard interface {
	WriteText(text string) error
}

// NewResult builds the view state for a set of generated files. The first
// file is active. An empty file list is rejected.
func NewResult(generationID string, files []domain.GeneratedFile, now time.Time) (*domain.Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files returned", domain.ErrMalformedResponse)
	}
	out := make([]domain.GeneratedFile, len(files))
	copy(out, files)
	return &domain.Result{
		GenerationID: generationID,
		Files:        out,
		Active:       out[0].Filename,
		GeneratedAt:  now,
	}, nil
}

// Results applies presentation rules to a Result it does not own.
type Results struct {
	result *domain.Result
}

// WrapResult returns a Results that edits r in place.
func WrapResult(r *domain.Result) *Results {
	return &Results{result: r}
}

// Select makes filename the active file. Unknown names are ignored.
func (r *Results) Select(filename string) bool {
	for _, f := range r.result.Files {
		if f.Filename == filename {
			r.result.Active = filename
			return true
		}
	}
	return false
}

// ActiveFile returns the file currently being viewed.
func (r *Results) ActiveFile() (domain.GeneratedFile, bool) {
	for _, f := range r.result.Files {
		if f.Filename == r.result.Active {
			return f, true
		}
	}
	return domain.GeneratedFile{}, false
}

// CopyActive writes the active file's content verbatim to the clipboard.
func (r *Results) CopyActive(cb Clipboard) error {
	f, ok := r.ActiveFile()
	if !ok {
		return domain.ErrNoResult
	}
	return cb.WriteText(f.Content)
}

// CachedSummary returns the explanation fetched for these files, if any.
func (r *Results) CachedSummary() (string, bool) {
	if r.result.Summary == nil {
		return "", false
	}
	return *r.result.Summary, true
}

// SetSummary caches an explanation.
func (r *Results) SetSummary(summary string) {
	r.result.Summary = &summary
}

// InvalidateSummary drops the cached explanation so the next request
// fetches a new one.
func (r *Results) InvalidateSummary() {
	r.result.Summary = nil
}

// CleanFilename strips a single leading path separator.
func CleanFilename(name string) string {
	return strings.TrimPrefix(name, "/")
}

// IsLocalFilename reports whether the cleaned name stays inside the folder
// it is placed in. Absolute paths, ".." escapes and backslashes are not local.
func IsLocalFilename(name string) bool {
	clean := CleanFilename(name)
	if strings.Contains(clean, `\`) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(clean))
}
