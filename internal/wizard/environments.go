package wizard

import (
	"strings"

	"github.com/bcnelson/cicd-wizard/internal/domain"
)

// MoveEnvironment swaps the environment at index with its neighbour in
// direction (-1 or +1). It reports false and leaves the list unchanged when
// the target position is out of range.
func MoveEnvironment(envs []domain.Environment, index, direction int) ([]domain.Environment, bool) {
	if direction != -1 && direction != 1 {
		return envs, false
	}
	to := index + direction
	if index < 0 || index >= len(envs) || to < 0 || to >= len(envs) {
		return envs, false
	}
	out := cloneEnvs(envs)
	out[index], out[to] = out[to], out[index]
	return out, true
}

// RemoveEnvironment deletes the environment at index. The list may become
// empty; callers treat that as an incomplete selection.
func RemoveEnvironment(envs []domain.Environment, index int) ([]domain.Environment, bool) {
	if index < 0 || index >= len(envs) {
		return envs, false
	}
	out := make([]domain.Environment, 0, len(envs)-1)
	out = append(out, envs[:index]...)
	out = append(out, envs[index+1:]...)
	return out, true
}

// AddEnvironment appends an environment named name with a lowercased id.
// A blank name is ignored. Duplicate names are allowed.
func AddEnvironment(envs []domain.Environment, name string) ([]domain.Environment, bool) {
	if strings.TrimSpace(name) == "" {
		return envs, false
	}
	out := cloneEnvs(envs)
	out = append(out, domain.Environment{ID: strings.ToLower(name), Name: name})
	return out, true
}

// RenameEnvironment changes the display name at index, keeping its id.
func RenameEnvironment(envs []domain.Environment, index int, name string) ([]domain.Environment, bool) {
	if strings.TrimSpace(name) == "" || index < 0 || index >= len(envs) {
		return envs, false
	}
	out := cloneEnvs(envs)
	out[index].Name = name
	return out, true
}

func cloneEnvs(envs []domain.Environment) []domain.Environment {
	out := make([]domain.Environment, len(envs), len(envs)+1)
	copy(out, envs)
	return out
}

// MoveEnvironment applies MoveEnvironment to the selection.
func (s *Selection) MoveEnvironment(index, direction int) bool {
	envs, ok := MoveEnvironment(s.state.Environments, index, direction)
	s.state.Environments = envs
	return ok
}

// RemoveEnvironment applies RemoveEnvironment to the selection.
func (s *Selection) RemoveEnvironment(index int) bool {
	envs, ok := RemoveEnvironment(s.state.Environments, index)
	s.state.Environments = envs
	return ok
}

// AddEnvironment applies AddEnvironment to the selection.
func (s *Selection) AddEnvironment(name string) bool {
	envs, ok := AddEnvironment(s.state.Environments, name)
	s.state.Environments = envs
	return ok
}

// RenameEnvironment applies RenameEnvironment to the selection.
func (s *Selection) RenameEnvironment(index int, name string) bool {
	envs, ok := RenameEnvironment(s.state.Environments, index, name)
	s.state.Environments = envs
	return ok
}
