package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/security"
)

// importDocument is the interchange shape used by other MCP clients:
// a top-level 'mcpServers' object keyed by server name.
type importDocument struct {
	Servers map[string]importServer `json:"mcpServers" yaml:"mcpServers"`
}

type importServer struct {
	Transport string            `json:"transport,omitempty" yaml:"transport,omitempty"`
	Type      string            `json:"type,omitempty"      yaml:"type,omitempty"`
	Command   string            `json:"command,omitempty"   yaml:"command,omitempty"`
	Args      []string          `json:"args,omitempty"      yaml:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"       yaml:"env,omitempty"`
	URL       string            `json:"url,omitempty"       yaml:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"   yaml:"headers,omitempty"`
	Disabled  bool              `json:"disabled,omitempty"  yaml:"disabled,omitempty"`
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Added   []string
	Skipped map[string]string // name -> reason
}

// Importer merges server declarations from other MCP clients' config files
// into a loaded configuration. Entries failing security validation or
// colliding with existing names are skipped, never imported silently.
type Importer struct {
	validator *security.Validator
}

// NewImporter creates an importer that vets stdio launches with the given
// validator.
func NewImporter(validator *security.Validator) *Importer {
	return &Importer{validator: validator}
}

// ImportFile reads a JSON or YAML file in the 'mcpServers' interchange shape
// and persists the acceptable entries. The format is chosen by file
// extension, with JSON as the default.
func (i *Importer) ImportFile(cfg Modifier, path string) (ImportReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}

	var doc importDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: cannot parse %s: %w", ErrImportFailed, path, err)
	}
	if len(doc.Servers) == 0 {
		return ImportReport{}, fmt.Errorf("%w: no 'mcpServers' entries in %s", ErrImportFailed, path)
	}

	return i.merge(cfg, doc), nil
}

// merge vets and persists importable entries, collecting skip reasons for
// the rest. Entries are processed in name order so runs are deterministic.
func (i *Importer) merge(cfg Modifier, doc importDocument) ImportReport {
	report := ImportReport{Skipped: map[string]string{}}

	existing := make(map[string]struct{})
	for _, entry := range cfg.ListServers() {
		existing[entry.Name] = struct{}{}
	}

	names := make([]string, 0, len(doc.Servers))
	for name := range doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := doc.Servers[name]

		if _, ok := existing[name]; ok {
			report.Skipped[name] = "a server with this name already exists"
			continue
		}

		entry, err := i.convert(name, src)
		if err != nil {
			report.Skipped[name] = err.Error()
			continue
		}

		if err := cfg.AddServer(entry); err != nil {
			report.Skipped[name] = err.Error()
			continue
		}
		report.Added = append(report.Added, name)
	}

	return report
}

// convert maps an interchange entry to a persisted one, inferring the
// transport when the source does not declare it.
func (i *Importer) convert(name string, src importServer) (ServerEntry, error) {
	transport := inferTransport(src)

	entry := ServerEntry{
		Name:      name,
		Transport: string(transport),
		Command:   src.Command,
		Args:      src.Args,
		Env:       src.Env,
		URL:       src.URL,
		Headers:   src.Headers,
		Disabled:  src.Disabled,
	}

	if err := entry.ServerConfig().Validate(); err != nil {
		return ServerEntry{}, err
	}

	if transport == domain.TransportStdio {
		// Imported declarations come from an implicitly-untrusted origin, so
		// npx packages must additionally clear the whitelist.
		verdict := i.validator.Validate(src.Command, src.Args, security.ModeWhitelist)
		if !verdict.Allowed {
			return ServerEntry{}, fmt.Errorf("rejected by security validation: %s", verdict.Reason)
		}
	}

	return entry, nil
}

func inferTransport(src importServer) domain.Transport {
	declared := strings.ToLower(strings.TrimSpace(src.Transport))
	if declared == "" {
		declared = strings.ToLower(strings.TrimSpace(src.Type))
	}

	switch declared {
	case string(domain.TransportStdio):
		return domain.TransportStdio
	case string(domain.TransportSSE):
		return domain.TransportSSE
	case string(domain.TransportHTTP), "streamable-http", "streamablehttp":
		return domain.TransportHTTP
	}

	if src.URL != "" {
		if strings.HasSuffix(strings.TrimRight(src.URL, "/"), "/sse") {
			return domain.TransportSSE
		}
		return domain.TransportHTTP
	}
	return domain.TransportStdio
}
