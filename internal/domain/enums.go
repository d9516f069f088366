package domain

// CloudPlatform is the cloud provider the pipeline deploys to.
type CloudPlatform string

const (
	CloudAWS   CloudPlatform = "AWS"
	CloudAzure CloudPlatform = "Azure"
	CloudGCP   CloudPlatform = "GCP"
)

// CloudPlatforms lists every cloud platform in display order.
var CloudPlatforms = []CloudPlatform{CloudAWS, CloudAzure, CloudGCP}

func (c CloudPlatform) String() string { return string(c) }

// Display returns the text used when describing the platform to the generator.
func (c CloudPlatform) Display() string { return string(c) }

// ParseCloudPlatform looks up a cloud platform by value.
func ParseCloudPlatform(s string) (CloudPlatform, bool) {
	return parseEnum(CloudPlatforms, s)
}

// AppType is the kind of application being built.
type AppType string

const (
	AppBackend        AppType = "Backend"
	AppFrontend       AppType = "Frontend"
	AppContainer      AppType = "Container"
	AppInfrastructure AppType = "Infrastructure"
	AppDataETL        AppType = "DataETL"
)

// AppTypes lists every application type in display order.
var AppTypes = []AppType{AppBackend, AppFrontend, AppContainer, AppInfrastructure, AppDataETL}

var appTypeDisplay = map[AppType]string{
	AppBackend:        "Backend (Node/Python/Go/etc)",
	AppFrontend:       "Frontend (React/Vue/Angular)",
	AppContainer:      "Containerized Application",
	AppInfrastructure: "Infrastructure Only (Terraform/Bicep)",
	AppDataETL:        "Data Pipeline / ETL",
}

func (a AppType) String() string { return string(a) }

// Display returns the text used when describing the app type to the generator.
func (a AppType) Display() string { return displayOr(appTypeDisplay, a) }

// ParseAppType looks up an application type by value.
func ParseAppType(s string) (AppType, bool) {
	return parseEnum(AppTypes, s)
}

// TargetResource is the managed service the pipeline deploys onto.
type TargetResource string

const (
	TargetWebApp            TargetResource = "WebApp"
	TargetFunctionApp       TargetResource = "FunctionApp"
	TargetAKS               TargetResource = "AKS"
	TargetContainerRegistry TargetResource = "ContainerRegistry"
	TargetVM                TargetResource = "VM"
	TargetStorage           TargetResource = "Storage"
	TargetServerless        TargetResource = "Serverless"
	TargetSynapse           TargetResource = "Synapse"
	TargetDataFactory       TargetResource = "DataFactory"
	TargetDatabricks        TargetResource = "Databricks"
	TargetSQLDatabase       TargetResource = "SQLDatabase"
)

// TargetResources lists every target resource value, including ones the
// catalog does not offer.
var TargetResources = []TargetResource{
	TargetWebApp, TargetFunctionApp, TargetAKS, TargetContainerRegistry, TargetVM,
	TargetStorage, TargetServerless, TargetSynapse, TargetDataFactory,
	TargetDatabricks, TargetSQLDatabase,
}

var targetResourceDisplay = map[TargetResource]string{
	TargetWebApp:            "Web App / App Service",
	TargetFunctionApp:       "Function App / Lambda",
	TargetAKS:               "Kubernetes Cluster (AKS/EKS/GKE)",
	TargetContainerRegistry: "Container Registry + Instance",
	TargetVM:                "Virtual Machine",
	TargetStorage:           "Static Storage (Blob/S3)",
	TargetServerless:        "Serverless (Generic)",
	TargetSynapse:           "Azure Synapse Analytics",
	TargetDataFactory:       "Azure Data Factory",
	TargetDatabricks:        "Databricks",
	TargetSQLDatabase:       "SQL Database",
}

func (t TargetResource) String() string { return string(t) }

// Display returns the text used when describing the resource to the generator.
func (t TargetResource) Display() string { return displayOr(targetResourceDisplay, t) }

// ParseTargetResource looks up a target resource by value.
func ParseTargetResource(s string) (TargetResource, bool) {
	return parseEnum(TargetResources, s)
}

// DevOpsPlatform is the CI/CD system the generated files target.
type DevOpsPlatform string

const (
	DevOpsGitHubActions      DevOpsPlatform = "GitHubActions"
	DevOpsAzureDevOps        DevOpsPlatform = "AzureDevOps"
	DevOpsGitLabCI           DevOpsPlatform = "GitLabCI"
	DevOpsBitbucketPipelines DevOpsPlatform = "BitbucketPipelines"
)

// DevOpsPlatforms lists every DevOps platform in display order.
var DevOpsPlatforms = []DevOpsPlatform{
	DevOpsGitHubActions, DevOpsAzureDevOps, DevOpsGitLabCI, DevOpsBitbucketPipelines,
}

var devOpsDisplay = map[DevOpsPlatform]string{
	DevOpsGitHubActions:      "GitHub Actions",
	DevOpsAzureDevOps:        "Azure DevOps",
	DevOpsGitLabCI:           "GitLab CI",
	DevOpsBitbucketPipelines: "Bitbucket Pipelines",
}

func (d DevOpsPlatform) String() string { return string(d) }

// Display returns the text used when describing the platform to the generator.
func (d DevOpsPlatform) Display() string { return displayOr(devOpsDisplay, d) }

// ParseDevOpsPlatform looks up a DevOps platform by value.
func ParseDevOpsPlatform(s string) (DevOpsPlatform, bool) {
	return parseEnum(DevOpsPlatforms, s)
}

// Architecture is whether the pipeline is one file or an orchestrator plus
// callable sub-pipelines.
type Architecture string

const (
	ArchitectureSingle Architecture = "Single"
	ArchitectureNested Architecture = "Nested"
)

// Architectures lists every architecture in display order.
var Architectures = []Architecture{ArchitectureSingle, ArchitectureNested}

var architectureDisplay = map[Architecture]string{
	ArchitectureSingle: "Single Pipeline",
	ArchitectureNested: "Nested Pipelines",
}

func (a Architecture) String() string { return string(a) }

// Display returns the text used when describing the architecture to the generator.
func (a Architecture) Display() string { return displayOr(architectureDisplay, a) }

// ParseArchitecture looks up an architecture by value.
func ParseArchitecture(s string) (Architecture, bool) {
	return parseEnum(Architectures, s)
}

// DeploymentStrategy is how new versions roll out to an environment.
type DeploymentStrategy string

const (
	StrategyStandard  DeploymentStrategy = "Standard"
	StrategyRolling   DeploymentStrategy = "Rolling"
	StrategyBlueGreen DeploymentStrategy = "BlueGreen"
	StrategyCanary    DeploymentStrategy = "Canary"
)

// DeploymentStrategies lists every deployment strategy in display order.
var DeploymentStrategies = []DeploymentStrategy{
	StrategyStandard, StrategyRolling, StrategyBlueGreen, StrategyCanary,
}

func (d DeploymentStrategy) String() string { return string(d) }

// ParseDeploymentStrategy looks up a deployment strategy by value.
func ParseDeploymentStrategy(s string) (DeploymentStrategy, bool) {
	return parseEnum(DeploymentStrategies, s)
}

func parseEnum[T ~string](values []T, s string) (T, bool) {
	for _, v := range values {
		if string(v) == s {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func displayOr[T ~string](m map[T]string, v T) string {
	if d, ok := m[v]; ok {
		return d
	}
	return string(v)
}
