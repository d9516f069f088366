package catalog

import (
	"slices"

	"github.com/bcnelson/cicd-wizard/internal/domain"
)

var cloudOptions = []Option{
	{Value: string(domain.CloudAWS), Label: "AWS", Description: "Amazon Web Services"},
	{Value: string(domain.CloudAzure), Label: "Azure", Description: "Microsoft Azure"},
	{Value: string(domain.CloudGCP), Label: "GCP", Description: "Google Cloud Platform"},
}

var appOptions = []Option{
	{Value: string(domain.AppBackend), Label: "Backend Service", Description: "Node.js, Python, Go, Java, .NET"},
	{Value: string(domain.AppFrontend), Label: "Frontend App", Description: "React, Angular, Vue, Svelte"},
	{Value: string(domain.AppContainer), Label: "Containerized", Description: "Docker, Podman, OCI Images"},
	{Value: string(domain.AppInfrastructure), Label: "Infrastructure", Description: "Terraform, Pulumi, Bicep"},
	{Value: string(domain.AppDataETL), Label: "Data / ETL", Description: "ADF, Synapse, Databricks, DBT"},
}

var devOpsOptions = []Option{
	{Value: string(domain.DevOpsGitHubActions), Label: "GitHub Actions", Description: "GitHub Actions"},
	{Value: string(domain.DevOpsAzureDevOps), Label: "Azure DevOps", Description: "Azure DevOps"},
	{Value: string(domain.DevOpsGitLabCI), Label: "GitLab CI", Description: "GitLab CI"},
	{Value: string(domain.DevOpsBitbucketPipelines), Label: "Bitbucket", Description: "Bitbucket Pipelines"},
}

var architectureOptions = []Option{
	{Value: string(domain.ArchitectureSingle), Label: "Single Pipeline", Description: "Build and Deploy in one file"},
	{Value: string(domain.ArchitectureNested), Label: "Nested Pipelines", Description: "Orchestrator calling nested/reusable workflows"},
}

var strategyOptions = []Option{
	{Value: string(domain.StrategyStandard), Label: "Standard", Description: "Replace the running version"},
	{Value: string(domain.StrategyRolling), Label: "Rolling", Description: "Replace instances in batches"},
	{Value: string(domain.StrategyBlueGreen), Label: "Blue/Green", Description: "Switch traffic between two slots"},
	{Value: string(domain.StrategyCanary), Label: "Canary", Description: "Shift a small share of traffic first"},
}

var defaultEnvironments = []domain.Environment{
	{ID: "dev", Name: "Development"},
	{ID: "qa", Name: "QA"},
	{ID: "staging", Name: "Staging"},
	{ID: "prod", Name: "Production"},
}

// CloudOptions returns the selectable cloud platforms.
func CloudOptions() []Option { return slices.Clone(cloudOptions) }

// AppOptions returns the selectable application types.
func AppOptions() []Option { return slices.Clone(appOptions) }

// DevOpsOptions returns the selectable DevOps platforms.
func DevOpsOptions() []Option { return slices.Clone(devOpsOptions) }

// ArchitectureOptions returns the selectable pipeline architectures.
func ArchitectureOptions() []Option { return slices.Clone(architectureOptions) }

// StrategyOptions returns the selectable deployment strategies.
func StrategyOptions() []Option { return slices.Clone(strategyOptions) }

// DefaultEnvironments returns the environment list a new wizard starts with.
func DefaultEnvironments() []domain.Environment { return slices.Clone(defaultEnvironments) }

// DefaultAdvanced returns the advanced options a new wizard starts with.
func DefaultAdvanced() domain.AdvancedOptions {
	return domain.AdvancedOptions{
		ManualApproval:     true,
		DeploymentStrategy: domain.StrategyStandard,
	}
}

// Catalog bundles every option list for clients that render the wizard.
type Catalog struct {
	Clouds              []Option             `json:"clouds"`
	AppTypes            []Option             `json:"appTypes"`
	TargetResources     []ResourceOption     `json:"targetResources"`
	DevOps              []Option             `json:"devOps"`
	Architectures       []Option             `json:"architectures"`
	Strategies          []Option             `json:"strategies"`
	DefaultEnvironments []domain.Environment `json:"defaultEnvironments"`
}

// All returns the full catalog.
func All() Catalog {
	return Catalog{
		Clouds:              CloudOptions(),
		AppTypes:            AppOptions(),
		TargetResources:     ResourceOptions(),
		DevOps:              DevOpsOptions(),
		Architectures:       ArchitectureOptions(),
		Strategies:          StrategyOptions(),
		DefaultEnvironments: DefaultEnvironments(),
	}
}
