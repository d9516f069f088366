package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
)

type rawFile struct {
	Filename    *string `json:"filename"`
	Content     *string `json:"content"`
	Description *string `json:"description"`
}

// ParseFiles decodes a generator response into files. The body must be a
// non-empty JSON array whose records all carry filename, content and
// description, with a non-blank filename that stays inside the template
// folder. Any violation rejects the whole
// response.
func ParseFiles(raw []byte) ([]domain.GeneratedFile, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", domain.ErrMalformedResponse)
	}

	var records []rawFile
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no files returned", domain.ErrMalformedResponse)
	}

	files := make([]domain.GeneratedFile, 0, len(records))
	for i, r := range records {
		switch {
		case r.Filename == nil:
			return nil, fmt.Errorf("%w: record %d has no filename", domain.ErrMalformedResponse, i)
		case r.Content == nil:
			return nil, fmt.Errorf("%w: record %d has no content", domain.ErrMalformedResponse, i)
		case r.Description == nil:
			return nil, fmt.Errorf("%w: record %d has no description", domain.ErrMalformedResponse, i)
		case strings.TrimSpace(*r.Filename) == "":
			return nil, fmt.Errorf("%w: record %d has a blank filename", domain.ErrMalformedResponse, i)
		case !wizard.IsLocalFilename(*r.Filename):
			return nil, fmt.Errorf("%w: record %d filename %q leaves the template folder", domain.ErrMalformedResponse, i, *r.Filename)
		}
		files = append(files, domain.GeneratedFile{
			Filename:    *r.Filename,
			Content:     *r.Content,
			Description: *r.Description,
		})
	}
	return files, nil
}
