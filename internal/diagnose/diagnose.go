// Package diagnose inspects the host for the runtimes MCP servers depend on
// and summarizes hub state for troubleshooting.
package diagnose

import (
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/registry"
	"github.com/agentpad/mcphub/internal/runtime"
)

// ExecutableResolver locates runtime executables. *runtime.Resolver
// satisfies it.
type ExecutableResolver interface {
	Resolve(command string) (string, error)
}

// RuntimeCheck reports whether one runtime executable is available.
type RuntimeCheck struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Hint      string `json:"hint,omitempty"`
}

// Report is the result of a full system diagnosis.
type Report struct {
	Runtimes         []RuntimeCheck `json:"runtimes"`
	RegistrySource   string         `json:"registrySource"`
	RegistryVersion  string         `json:"registryVersion"`
	RegistryPackages int            `json:"registryPackages"`
	ConnectedServers []string       `json:"connectedServers"`
	UnhealthyServers []string       `json:"unhealthyServers"`
}

// Doctor runs the checks. NewDoctor should be used to create instances of
// Doctor.
type Doctor struct {
	logger   hclog.Logger
	resolver ExecutableResolver
	registry *registry.Registry
	conns    contracts.ConnectionManager
	health   contracts.HealthMonitor
}

func NewDoctor(
	logger hclog.Logger,
	resolver ExecutableResolver,
	reg *registry.Registry,
	conns contracts.ConnectionManager,
	health contracts.HealthMonitor,
) *Doctor {
	return &Doctor{
		logger:   logger.Named("diagnose"),
		resolver: resolver,
		registry: reg,
		conns:    conns,
		health:   health,
	}
}

// checkedRuntimes are probed in order; hints name what provides the missing
// executable.
var checkedRuntimes = []struct {
	name string
	hint string
}{
	{name: string(runtime.NPX), hint: "provided by Node.js"},
	{name: string(runtime.Node), hint: "provided by Node.js"},
	{name: "npm", hint: "provided by Node.js"},
	{name: string(runtime.UVX), hint: "provided by uv"},
	{name: string(runtime.UV), hint: "provided by uv"},
	{name: "python3", hint: "provided by Python"},
}

// Run probes every runtime and snapshots registry and connection state.
// It never fails: missing runtimes are findings, not errors.
func (d *Doctor) Run() Report {
	report := Report{
		Runtimes:         make([]RuntimeCheck, 0, len(checkedRuntimes)),
		ConnectedServers: []string{},
		UnhealthyServers: []string{},
	}

	for _, rt := range checkedRuntimes {
		check := RuntimeCheck{Name: rt.name}
		path, err := d.resolver.Resolve(rt.name)
		if err != nil {
			check.Hint = rt.hint
			d.logger.Debug("Runtime not found", "runtime", rt.name)
		} else {
			check.Available = true
			check.Path = path
		}
		report.Runtimes = append(report.Runtimes, check)
	}

	if d.registry != nil {
		report.RegistrySource = string(d.registry.Source())
		report.RegistryVersion = d.registry.Version()
		report.RegistryPackages = len(d.registry.Entries())
	}

	if d.conns != nil {
		report.ConnectedServers = d.conns.ConnectedServers()
	}
	if d.health != nil {
		report.UnhealthyServers = d.health.UnhealthyServers()
	}

	sort.Strings(report.ConnectedServers)
	sort.Strings(report.UnhealthyServers)
	return report
}

// Healthy reports whether at least one package runner is available.
func (r Report) Healthy() bool {
	for _, rt := range r.Runtimes {
		if rt.Available && runtime.IsPackageRunner(rt.Name) {
			return true
		}
	}
	return false
}
