package generator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/prompt"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
	"gopkg.in/yaml.v3"
)

// fixture is the on-disk format read by FileShim.
type fixture struct {
	Files   []domain.GeneratedFile `yaml:"files"`
	Summary string                 `yaml:"summary"`
}

// FileShim is an offline Generator that answers from a YAML fixture. The file
// is re-read on every call so it can be edited while the server runs.
type FileShim struct {
	filePath string

	mu       sync.Mutex
	requests []prompt.Request
}

// Ensure FileShim implements Generator.
var _ Generator = (*FileShim)(nil)

// NewFileShim creates a shim reading from filePath.
func NewFileShim(filePath string) *FileShim {
	return &FileShim{filePath: filePath}
}

// Name implements Generator.
func (f *FileShim) Name() string { return "file:" + f.filePath }

// Generate returns the fixture's files.
func (f *FileShim) Generate(ctx context.Context, req prompt.Request) ([]domain.GeneratedFile, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	fx, err := f.load()
	if err != nil {
		return nil, err
	}
	if len(fx.Files) == 0 {
		return nil, fmt.Errorf("%w: fixture %s has no files", domain.ErrMalformedResponse, f.filePath)
	}
	for i, file := range fx.Files {
		if strings.TrimSpace(file.Filename) == "" {
			return nil, fmt.Errorf("%w: fixture record %d has a blank filename", domain.ErrMalformedResponse, i)
		}
		if !wizard.IsLocalFilename(file.Filename) {
			return nil, fmt.Errorf("%w: fixture record %d filename %q leaves the template folder", domain.ErrMalformedResponse, i, file.Filename)
		}
	}

	logging.FromContext(ctx).Debug("file shim generated", "path", f.filePath, "files", len(fx.Files))
	out := make([]domain.GeneratedFile, len(fx.Files))
	copy(out, fx.Files)
	return out, nil
}

// Explain returns the fixture's summary, or FallbackExplanation when it has none.
func (f *FileShim) Explain(ctx context.Context, files []domain.GeneratedFile) (string, error) {
	fx, err := f.load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(fx.Summary) == "" {
		return FallbackExplanation, nil
	}
	return fx.Summary, nil
}

// Requests returns every request the shim has received.
func (f *FileShim) Requests() []prompt.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]prompt.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FileShim) load() (*fixture, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return nil, fmt.Errorf("reading generator fixture: %w", err)
	}
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("%w: parsing generator fixture: %v", domain.ErrMalformedResponse, err)
	}
	return &fx, nil
}
