// Package catalog is the static table of selectable wizard options and the
// compatibility rules between target resources, clouds and app types.
package catalog

import (
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/samber/lo"
)

// Option represents a selectable option with value and label.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ResourceOption describes a target resource and where it can be used.
// A nil AppTypes means the resource accepts every app type.
type ResourceOption struct {
	Value       domain.TargetResource  `json:"value"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Platforms   []domain.CloudPlatform `json:"platforms"`
	AppTypes    []domain.AppType       `json:"appTypes,omitempty"`
}

// SupportsCloud reports whether the resource is offered on the cloud.
func (o ResourceOption) SupportsCloud(c domain.CloudPlatform) bool {
	return lo.Contains(o.Platforms, c)
}

// SupportsAppType reports whether the resource accepts the app type.
func (o ResourceOption) SupportsAppType(a domain.AppType) bool {
	if o.AppTypes == nil {
		return true
	}
	return lo.Contains(o.AppTypes, a)
}

var allClouds = []domain.CloudPlatform{domain.CloudAWS, domain.CloudAzure, domain.CloudGCP}

var resourceOptions = []ResourceOption{
	{
		Value:       domain.TargetWebApp,
		Label:       "Web App",
		Description: "App Service, Elastic Beanstalk, Cloud Run",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppBackend, domain.AppFrontend, domain.AppContainer, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetFunctionApp,
		Label:       "Serverless Function",
		Description: "Azure Functions, Lambda, Google Functions",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppBackend, domain.AppContainer, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetAKS,
		Label:       "Kubernetes Cluster",
		Description: "AKS, EKS, GKE",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppBackend, domain.AppFrontend, domain.AppContainer, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetContainerRegistry,
		Label:       "Container Instance",
		Description: "ACR+ACI, ECR+ECS, GCR",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppContainer, domain.AppBackend, domain.AppFrontend, domain.AppInfrastructure},
	},
	{
		// VMs can host anything, including manually installed data tooling.
		Value:       domain.TargetVM,
		Label:       "Virtual Machine",
		Description: "EC2, Azure VM, Compute Engine",
		Platforms:   allClouds,
	},
	{
		Value:       domain.TargetStorage,
		Label:       "Storage / Static",
		Description: "S3, Blob Storage, Cloud Storage",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppFrontend, domain.AppDataETL, domain.AppInfrastructure, domain.AppBackend},
	},
	{
		Value:       domain.TargetDataFactory,
		Label:       "Data Factory",
		Description: "ETL Pipelines (ADF)",
		Platforms:   []domain.CloudPlatform{domain.CloudAzure},
		AppTypes:    []domain.AppType{domain.AppDataETL, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetSynapse,
		Label:       "Synapse Analytics",
		Description: "Big Data Analytics",
		Platforms:   []domain.CloudPlatform{domain.CloudAzure},
		AppTypes:    []domain.AppType{domain.AppDataETL, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetDatabricks,
		Label:       "Databricks",
		Description: "Unified Data Analytics",
		Platforms:   []domain.CloudPlatform{domain.CloudAzure, domain.CloudAWS, domain.CloudGCP},
		AppTypes:    []domain.AppType{domain.AppDataETL, domain.AppInfrastructure},
	},
	{
		Value:       domain.TargetSQLDatabase,
		Label:       "SQL Database",
		Description: "Managed SQL Instances",
		Platforms:   allClouds,
		AppTypes:    []domain.AppType{domain.AppDataETL, domain.AppBackend, domain.AppInfrastructure},
	},
}

var resourceIndex = lo.SliceToMap(resourceOptions, func(o ResourceOption) (domain.TargetResource, ResourceOption) {
	return o.Value, o
})

// FindResourceOption returns the catalog entry for a target resource.
// Unknown values, and values the catalog does not offer, report false.
func FindResourceOption(t domain.TargetResource) (ResourceOption, bool) {
	o, ok := resourceIndex[t]
	if !ok {
		return ResourceOption{}, false
	}
	return cloneResource(o), true
}

// ResourceOptions returns every target resource the catalog offers.
func ResourceOptions() []ResourceOption {
	return lo.Map(resourceOptions, func(o ResourceOption, _ int) ResourceOption {
		return cloneResource(o)
	})
}

// AvailableTargetResources returns the resources offered on a cloud, or all
// of them when cloud is unset.
func AvailableTargetResources(cloud domain.CloudPlatform) []ResourceOption {
	filtered := lo.Filter(resourceOptions, func(o ResourceOption, _ int) bool {
		return cloud == "" || o.SupportsCloud(cloud)
	})
	return lo.Map(filtered, func(o ResourceOption, _ int) ResourceOption {
		return cloneResource(o)
	})
}

func cloneResource(o ResourceOption) ResourceOption {
	o.Platforms = append([]domain.CloudPlatform(nil), o.Platforms...)
	if o.AppTypes != nil {
		o.AppTypes = append([]domain.AppType{}, o.AppTypes...)
	}
	return o
}
