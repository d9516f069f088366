package domain

// Environment is one deployment stage. Position in the list is the promotion
// order; there is no separate priority field.
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdvancedOptions refine the generated pipeline without affecting whether a
// selection is valid. GenerateDockerfile is only meaningful with DockerSupport.
type AdvancedOptions struct {
	DockerSupport      bool               `json:"dockerSupport"`
	GenerateDockerfile bool               `json:"generateDockerfile"`
	IaC                bool               `json:"iac"`
	ManualApproval     bool               `json:"manualApproval"`
	DeploymentStrategy DeploymentStrategy `json:"deploymentStrategy"`
	ArtifactPromotion  bool               `json:"artifactPromotion"`
}

// SelectionState is the in-progress set of wizard choices.
// An empty string means the field is unset.
type SelectionState struct {
	Cloud          CloudPlatform   `json:"cloud"`
	AppType        AppType         `json:"appType"`
	TargetResource TargetResource  `json:"targetResource"`
	DevOps         DevOpsPlatform  `json:"devOps"`
	Architecture   Architecture    `json:"architecture"`
	Environments   []Environment   `json:"environments"`
	Advanced       AdvancedOptions `json:"advanced"`
}

// Field keys accepted by the selection update entry point.
const (
	FieldCloud          = "cloud"
	FieldAppType        = "appType"
	FieldTargetResource = "targetResource"
	FieldDevOps         = "devOps"
	FieldArchitecture   = "architecture"
)

// SelectionFields lists the five single-choice field keys in wizard order.
var SelectionFields = []string{
	FieldCloud, FieldAppType, FieldTargetResource, FieldDevOps, FieldArchitecture,
}

// Clone returns a deep copy of the selection.
func (s SelectionState) Clone() SelectionState {
	out := s
	if s.Environments != nil {
		out.Environments = make([]Environment, len(s.Environments))
		copy(out.Environments, s.Environments)
	}
	return out
}
