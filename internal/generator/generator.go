// Package generator defines the boundary to the external service that
// produces pipeline files and their explanations.
package generator

import (
	"context"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/prompt"
)

// FallbackExplanation is returned when the provider answers with no text.
const FallbackExplanation = "Could not generate explanation."

// Generator produces pipeline files for a request and explains them.
type Generator interface {
	// Generate returns the files for req. It never returns a partial list:
	// either every record parsed or an error is returned.
	Generate(ctx context.Context, req prompt.Request) ([]domain.GeneratedFile, error)

	// Explain summarizes files in free text.
	Explain(ctx context.Context, files []domain.GeneratedFile) (string, error)

	// Name identifies the backend in logs.
	Name() string
}
