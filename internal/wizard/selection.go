// Package wizard holds the rules for editing a wizard selection: field
// updates, the cloud to target resource consistency rule, the app type
// compatibility check, the environment list and the generated file view.
package wizard

import (
	"fmt"
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/catalog"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/samber/lo"
)

// Selection applies wizard rules to a SelectionState it does not own.
type Selection struct {
	state *domain.SelectionState
}

// Wrap returns a Selection that edits s in place.
func Wrap(s *domain.SelectionState) *Selection {
	return &Selection{state: s}
}

// NewSelection returns the state a fresh wizard starts with.
func NewSelection() domain.SelectionState {
	return domain.SelectionState{
		Environments: catalog.DefaultEnvironments(),
		Advanced:     catalog.DefaultAdvanced(),
	}
}

// State returns the wrapped state.
func (s *Selection) State() *domain.SelectionState {
	return s.state
}

// Reset restores the defaults.
func (s *Selection) Reset() {
	*s.state = NewSelection()
}

// SetField replaces one single-choice field. An empty value unsets it.
// Values are not cross-validated here except that a target resource must be
// offered on the current cloud, and changing the cloud runs OnCloudChanged.
func (s *Selection) SetField(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case domain.FieldCloud:
		if value == "" {
			s.state.Cloud = ""
			return nil
		}
		c, ok := domain.ParseCloudPlatform(value)
		if !ok {
			return invalidValue(key, value)
		}
		s.state.Cloud = c
		s.OnCloudChanged(c)

	case domain.FieldAppType:
		if value == "" {
			s.state.AppType = ""
			return nil
		}
		a, ok := domain.ParseAppType(value)
		if !ok {
			return invalidValue(key, value)
		}
		s.state.AppType = a

	case domain.FieldTargetResource:
		if value == "" {
			s.state.TargetResource = ""
			return nil
		}
		t, ok := domain.ParseTargetResource(value)
		if !ok {
			return invalidValue(key, value)
		}
		if !s.isAvailable(t) {
			return fmt.Errorf("%w: %s is not offered on %s", domain.ErrInvalidInput, t, s.cloudLabel())
		}
		s.state.TargetResource = t

	case domain.FieldDevOps:
		if value == "" {
			s.state.DevOps = ""
			return nil
		}
		d, ok := domain.ParseDevOpsPlatform(value)
		if !ok {
			return invalidValue(key, value)
		}
		s.state.DevOps = d

	case domain.FieldArchitecture:
		if value == "" {
			s.state.Architecture = ""
			return nil
		}
		a, ok := domain.ParseArchitecture(value)
		if !ok {
			return invalidValue(key, value)
		}
		s.state.Architecture = a

	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, key)
	}

	return nil
}

// OnCloudChanged clears the target resource when the new cloud does not
// offer it. It runs on every cloud change.
func (s *Selection) OnCloudChanged(c domain.CloudPlatform) {
	if c == "" || s.state.TargetResource == "" {
		return
	}
	opt, ok := catalog.FindResourceOption(s.state.TargetResource)
	if ok && !opt.SupportsCloud(c) {
		s.state.TargetResource = ""
	}
}

// CompatibilityError describes why the chosen target resource does not accept
// the chosen app type. It returns "" when either is unset or they match.
// The mismatch is reported, never corrected.
func (s *Selection) CompatibilityError() string {
	if s.state.AppType == "" || s.state.TargetResource == "" {
		return ""
	}
	opt, ok := catalog.FindResourceOption(s.state.TargetResource)
	if !ok || opt.SupportsAppType(s.state.AppType) {
		return ""
	}
	allowed := lo.Map(opt.AppTypes, func(a domain.AppType, _ int) string {
		return "'" + string(a) + "'"
	})
	return fmt.Sprintf("Mismatch: '%s' is not a valid target for '%s'. Select %s for this resource.",
		s.state.TargetResource, s.state.AppType, joinOr(allowed))
}

// IsComplete reports whether every single-choice field is set and at least
// one environment exists.
func (s *Selection) IsComplete() bool {
	st := s.state
	return st.Cloud != "" &&
		st.AppType != "" &&
		st.TargetResource != "" &&
		st.DevOps != "" &&
		st.Architecture != "" &&
		len(st.Environments) > 0
}

// IsValid reports whether the selection may be submitted.
func (s *Selection) IsValid() bool {
	return s.IsComplete() && s.CompatibilityError() == ""
}

// AvailableTargetResources returns the resources selectable on the current cloud.
func (s *Selection) AvailableTargetResources() []catalog.ResourceOption {
	return catalog.AvailableTargetResources(s.state.Cloud)
}

// SetAdvanced replaces the advanced options. GenerateDockerfile is cleared in
// the same update when DockerSupport is off; an empty strategy means Standard.
func (s *Selection) SetAdvanced(opts domain.AdvancedOptions) error {
	if opts.DeploymentStrategy == "" {
		opts.DeploymentStrategy = domain.StrategyStandard
	}
	if _, ok := domain.ParseDeploymentStrategy(string(opts.DeploymentStrategy)); !ok {
		return invalidValue("deploymentStrategy", string(opts.DeploymentStrategy))
	}
	if !opts.DockerSupport {
		opts.GenerateDockerfile = false
	}
	s.state.Advanced = opts
	return nil
}

// SetDockerSupport toggles pipeline container support. Turning it off also
// turns off Dockerfile generation.
func (s *Selection) SetDockerSupport(on bool) {
	s.state.Advanced.DockerSupport = on
	if !on {
		s.state.Advanced.GenerateDockerfile = false
	}
}

// SetGenerateDockerfile toggles Dockerfile generation. It is rejected while
// container support is off.
func (s *Selection) SetGenerateDockerfile(on bool) error {
	if on && !s.state.Advanced.DockerSupport {
		return fmt.Errorf("%w: generateDockerfile requires dockerSupport", domain.ErrInvalidInput)
	}
	s.state.Advanced.GenerateDockerfile = on
	return nil
}

func (s *Selection) isAvailable(t domain.TargetResource) bool {
	return lo.ContainsBy(s.AvailableTargetResources(), func(o catalog.ResourceOption) bool {
		return o.Value == t
	})
}

func (s *Selection) cloudLabel() string {
	if s.state.Cloud == "" {
		return "any cloud"
	}
	return string(s.state.Cloud)
}

func invalidValue(key, value string) error {
	return fmt.Errorf("%w: unknown %s %q", domain.ErrInvalidInput, key, value)
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}
