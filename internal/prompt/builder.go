// Package prompt turns a wizard selection into the instruction and response
// schema sent to the generator. It performs no I/O.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/validation"
	"github.com/samber/lo"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"environments": joinEnvironments,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Request is what the generator receives for one generation.
type Request struct {
	Instruction string `json:"instruction"`
	Schema      Schema `json:"schema"`
}

// Build renders the generation request for s. Selections that are incomplete
// or incompatible are refused.
func Build(s domain.SelectionState) (Request, error) {
	if err := validation.ValidateSelection(s); err != nil {
		return Request{}, err
	}
	if s.Advanced.DeploymentStrategy == "" {
		s.Advanced.DeploymentStrategy = domain.StrategyStandard
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "generate.tmpl", s); err != nil {
		return Request{}, fmt.Errorf("render instruction: %w", err)
	}

	return Request{
		Instruction: buf.String(),
		Schema:      FilesSchema(),
	}, nil
}

// BuildExplanation renders the summary prompt for a set of generated files.
func BuildExplanation(files []domain.GeneratedFile) (string, error) {
	if len(files) == 0 {
		return "", domain.ErrNoResult
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "explain.tmpl", FileContext(files)); err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return buf.String(), nil
}

// FileContext joins files as "--- name ---" blocks separated by blank lines.
func FileContext(files []domain.GeneratedFile) string {
	blocks := lo.Map(files, func(f domain.GeneratedFile, _ int) string {
		return "--- " + f.Filename + " ---\n" + f.Content
	})
	return strings.Join(blocks, "\n\n")
}

func joinEnvironments(envs []domain.Environment) string {
	names := lo.Map(envs, func(e domain.Environment, _ int) string { return e.Name })
	return strings.Join(names, " -> ")
}
