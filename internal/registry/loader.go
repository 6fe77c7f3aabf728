package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/agentpad/mcphub/internal/errors"
)

// DefaultRegistryURL is the catalog document fetched when no override is
// configured.
const DefaultRegistryURL = "https://registry.agentpad.dev/mcp/servers.json"

const fetchTimeout = 10 * time.Second

// documentSchema validates a remote catalog before it replaces the embedded
// fallback. A document that fails schema validation is discarded wholesale
// rather than partially applied.
const documentSchema = `{
	"type": "object",
	"required": ["version", "lastUpdated", "entries"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "name", "packageIdentifier", "status"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string"},
					"packageIdentifier": {"type": "string", "minLength": 1},
					"status": {"type": "string"},
					"version": {"type": "string"}
				}
			}
		},
		"deprecated": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "name", "packageIdentifier", "reason"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string"},
					"packageIdentifier": {"type": "string", "minLength": 1},
					"reason": {"type": "string"},
					"alternative": {"type": "string"}
				}
			}
		}
	}
}`

// Load fetches and validates the catalog at url, falling back to the embedded
// catalog on any failure. Load never returns an error to callers: registry
// unavailability is not fatal, only logged.
func Load(logger hclog.Logger, url string) *Registry {
	l := logger.Named("registry")

	reg, err := loadRemote(url)
	if err != nil {
		l.Warn("Falling back to embedded registry catalog", "url", url, "error", err)
		return NewRegistry(embeddedCatalog(), SourceEmbedded)
	}

	l.Debug("Loaded remote registry catalog", "url", url, "entries", len(reg.doc.Entries))
	return reg
}

// loadRemote fetches, schema-checks, and decodes a catalog document.
func loadRemote(url string) (*Registry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty registry URL", errors.ErrRegistryUnavailable)
	}

	httpClient := &http.Client{Timeout: fetchTimeout}
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch registry URL '%s': %w", errors.ErrRegistryUnavailable, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"%w: received non-OK HTTP status from registry '%s': %d",
			errors.ErrRegistryUnavailable,
			url,
			resp.StatusCode,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read registry response body: %w", errors.ErrRegistryUnavailable, err)
	}

	return ParseDocument(body)
}

// ParseDocument validates raw JSON against the catalog schema and decodes it.
func ParseDocument(raw []byte) (*Registry, error) {
	schema := gojsonschema.NewStringLoader(documentSchema)
	document := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to validate registry document: %w", errors.ErrRegistryUnavailable, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf(
			"%w: registry document failed schema validation: %s",
			errors.ErrRegistryUnavailable,
			strings.Join(details, "; "),
		)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal registry document: %w", errors.ErrRegistryUnavailable, err)
	}

	return NewRegistry(doc, SourceRemote), nil
}
