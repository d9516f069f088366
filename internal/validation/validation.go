// Package validation checks a wizard selection before it is turned into a
// generation request. Missing choices are classified as
// domain.ErrIncompleteSelection, app type mismatches as
// domain.ErrIncompatibleSelection and out-of-catalog values as
// domain.ErrInvalidInput.
package validation

import (
	"fmt"
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/catalog"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
)

// ValidateSelection returns nil when s may be submitted, and otherwise a
// ValidationErrors describing every problem found.
func ValidateSelection(s domain.SelectionState) error {
	var errs ValidationErrors

	checkEnum(&errs, domain.FieldCloud, string(s.Cloud), func(v string) bool {
		_, ok := domain.ParseCloudPlatform(v)
		return ok
	})
	checkEnum(&errs, domain.FieldAppType, string(s.AppType), func(v string) bool {
		_, ok := domain.ParseAppType(v)
		return ok
	})
	checkEnum(&errs, domain.FieldTargetResource, string(s.TargetResource), func(v string) bool {
		_, ok := catalog.FindResourceOption(domain.TargetResource(v))
		return ok
	})
	checkEnum(&errs, domain.FieldDevOps, string(s.DevOps), func(v string) bool {
		_, ok := domain.ParseDevOpsPlatform(v)
		return ok
	})
	checkEnum(&errs, domain.FieldArchitecture, string(s.Architecture), func(v string) bool {
		_, ok := domain.ParseArchitecture(v)
		return ok
	})

	if len(s.Environments) == 0 {
		errs.Add(domain.ErrIncompleteSelection, "environments", "", "at least one environment is required")
	}
	for i, env := range s.Environments {
		if err := ValidateEnvironmentName(env.Name); err != nil {
			errs.Add(domain.ErrInvalidInput, fmt.Sprintf("environments[%d].name", i), env.Name, err.Error())
		}
	}

	if err := ValidateAdvanced(s.Advanced); err != nil {
		errs.Add(domain.ErrInvalidInput, "advanced", "", err.Error())
	}

	if s.Cloud != "" && s.TargetResource != "" {
		if opt, ok := catalog.FindResourceOption(s.TargetResource); ok && !opt.SupportsCloud(s.Cloud) {
			errs.Add(domain.ErrInvalidInput, domain.FieldTargetResource, string(s.TargetResource),
				fmt.Sprintf("%s is not offered on %s", s.TargetResource, s.Cloud))
		}
	}

	if msg := wizard.Wrap(&s).CompatibilityError(); msg != "" {
		errs.Add(domain.ErrIncompatibleSelection, domain.FieldAppType, string(s.AppType), msg)
	}

	return errs.OrNil()
}

// ValidateEnvironmentName rejects names that are empty or only whitespace.
func ValidateEnvironmentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	return nil
}

// ValidateAdvanced checks the advanced options record on its own.
func ValidateAdvanced(a domain.AdvancedOptions) error {
	if a.GenerateDockerfile && !a.DockerSupport {
		return fmt.Errorf("generateDockerfile requires dockerSupport")
	}
	if a.DeploymentStrategy != "" {
		if _, ok := domain.ParseDeploymentStrategy(string(a.DeploymentStrategy)); !ok {
			return fmt.Errorf("unknown deployment strategy %q", a.DeploymentStrategy)
		}
	}
	return nil
}

func checkEnum(errs *ValidationErrors, field, value string, known func(string) bool) {
	if value == "" {
		errs.Add(domain.ErrIncompleteSelection, field, "", field+" must be selected")
		return
	}
	if !known(value) {
		errs.Add(domain.ErrInvalidInput, field, value, "unknown value")
	}
}
