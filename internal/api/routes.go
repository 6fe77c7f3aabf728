package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentpad/mcphub/internal/bridge"
	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/diagnose"
	"github.com/agentpad/mcphub/internal/registry"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// Dependencies carries everything the route handlers need.
type Dependencies struct {
	Connections contracts.ConnectionManager
	Health      contracts.HealthMonitor
	Bridge      *bridge.Bridge
	Doctor      *diagnose.Doctor
	Registry    *registry.Registry
}

// Validate ensures no handler receives a nil collaborator.
func (d Dependencies) Validate() error {
	if d.Connections == nil || reflect.ValueOf(d.Connections).IsNil() {
		return fmt.Errorf("connection manager cannot be nil")
	}
	if d.Health == nil || reflect.ValueOf(d.Health).IsNil() {
		return fmt.Errorf("health monitor cannot be nil")
	}
	if d.Bridge == nil {
		return fmt.Errorf("tool bridge cannot be nil")
	}
	if d.Doctor == nil {
		return fmt.Errorf("doctor cannot be nil")
	}
	if d.Registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return nil
}

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(router huma.API, deps Dependencies) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if err := deps.Validate(); err != nil {
		return "", err
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, deps.Health, "/health")
	RegisterServerRoutes(versionedGroup, deps.Connections, deps.Health, "/servers")
	RegisterToolRoutes(versionedGroup, deps.Bridge, "/tools")
	RegisterDiagnosticRoutes(versionedGroup, deps.Doctor, deps.Registry, "/diagnostics")

	return apiPathPrefix, nil
}
