package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentpad/mcphub/internal/diagnose"
	"github.com/agentpad/mcphub/internal/registry"
)

// DiagnosticsResponse wraps a full system diagnosis.
type DiagnosticsResponse struct {
	Body diagnose.Report
}

// RegistryInfoResponse summarizes the active package catalog.
type RegistryInfoResponse struct {
	Body struct {
		Source   string `doc:"Where the catalog came from: remote or embedded" json:"source"`
		Version  string `doc:"Catalog document version"                        json:"version"`
		Packages int    `doc:"Number of known-good packages"                   json:"packages"`
	}
}

// PackageValidationRequest asks for the catalog verdict on one package.
type PackageValidationRequest struct {
	Name string `doc:"Package identifier to validate" example:"@modelcontextprotocol/server-filesystem" path:"name"`
}

// PackageValidationResponse wraps the catalog verdict for a package.
type PackageValidationResponse struct {
	Body registry.Validation
}

// RegisterDiagnosticRoutes sets up system diagnosis and registry lookup
// endpoints.
func RegisterDiagnosticRoutes(routerAPI huma.API, doctor *diagnose.Doctor, reg *registry.Registry, apiPathPrefix string) {
	diagAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Diagnostics"}

	huma.Register(
		diagAPI,
		huma.Operation{
			OperationID: "diagnoseSystem",
			Method:      http.MethodGet,
			Summary:     "Probe runtimes, registry, and connection state",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*DiagnosticsResponse, error) {
			return &DiagnosticsResponse{Body: doctor.Run()}, nil
		},
	)

	huma.Register(
		diagAPI,
		huma.Operation{
			OperationID: "getRegistryInfo",
			Method:      http.MethodGet,
			Path:        "/registry",
			Summary:     "Summarize the active package registry",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*RegistryInfoResponse, error) {
			resp := &RegistryInfoResponse{}
			resp.Body.Source = string(reg.Source())
			resp.Body.Version = reg.Version()
			resp.Body.Packages = len(reg.Entries())
			return resp, nil
		},
	)

	huma.Register(
		diagAPI,
		huma.Operation{
			OperationID: "validatePackage",
			Method:      http.MethodGet,
			Path:        "/registry/packages/{name}",
			Summary:     "Validate a package identifier against the registry",
			Tags:        tags,
		},
		func(ctx context.Context, input *PackageValidationRequest) (*PackageValidationResponse, error) {
			return &PackageValidationResponse{Body: reg.ValidatePackage(input.Name)}, nil
		},
	)
}
