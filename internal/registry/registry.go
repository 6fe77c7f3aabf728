// Package registry provides a read-only catalog of known-good and deprecated
// MCP server packages. The catalog is loaded once, either from a remote
// document or from the embedded fallback, and is never mutated at runtime.
// It is consulted for package validation and for enriching connection error
// diagnostics.
package registry

import (
	"strings"
)

const (
	// SourceRemote indicates that the catalog was fetched from a registry URL.
	SourceRemote Source = "remote"

	// SourceEmbedded indicates the hardcoded fallback catalog is in use.
	SourceEmbedded Source = "embedded"
)

// Source identifies where the active catalog came from.
type Source string

const (
	// PackageVerified means the package is in the curated known-good set.
	PackageVerified PackageStatus = "verified"

	// PackageDeprecated means the package should no longer be used; the
	// deprecation entry names an alternative when one exists.
	PackageDeprecated PackageStatus = "deprecated"

	// PackageUnknown means the package is absent from the catalog.
	PackageUnknown PackageStatus = "unknown"
)

// PackageStatus is the verdict of a registry lookup for a package identifier.
type PackageStatus string

// Entry is a known-good catalog entry.
type Entry struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PackageIdentifier string `json:"packageIdentifier"`
	Status            string `json:"status"`
	Version           string `json:"version,omitempty"`
}

// DeprecatedEntry records a package that must not be used any more, together
// with the reason and a suggested alternative.
type DeprecatedEntry struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PackageIdentifier string `json:"packageIdentifier"`
	Reason            string `json:"reason"`
	Alternative       string `json:"alternative"`
}

// Document is the wire shape of a registry catalog.
type Document struct {
	Version     string            `json:"version"`
	LastUpdated string            `json:"lastUpdated"`
	Entries     []Entry           `json:"entries"`
	Deprecated  []DeprecatedEntry `json:"deprecated"`
}

// Validation is the result of validating a package identifier against the
// catalog.
type Validation struct {
	Package     string        `json:"package"`
	Status      PackageStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Alternative string        `json:"alternative,omitempty"`
}

// Registry indexes a catalog document for lookup.
// NewRegistry should be used to create instances of Registry.
type Registry struct {
	doc        Document
	source     Source
	entries    map[string]Entry
	deprecated map[string]DeprecatedEntry
}

// NewRegistry indexes the supplied document. Package identifiers are compared
// case-insensitively with any version suffix stripped.
func NewRegistry(doc Document, source Source) *Registry {
	entries := make(map[string]Entry, len(doc.Entries))
	for _, e := range doc.Entries {
		entries[normalizePackage(e.PackageIdentifier)] = e
	}

	deprecated := make(map[string]DeprecatedEntry, len(doc.Deprecated))
	for _, d := range doc.Deprecated {
		deprecated[normalizePackage(d.PackageIdentifier)] = d
	}

	return &Registry{
		doc:        doc,
		source:     source,
		entries:    entries,
		deprecated: deprecated,
	}
}

// Source reports whether the active catalog is remote or the embedded fallback.
func (r *Registry) Source() Source {
	return r.source
}

// Version returns the catalog document version.
func (r *Registry) Version() string {
	return r.doc.Version
}

// Entries returns the known-good catalog entries.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.doc.Entries))
	copy(out, r.doc.Entries)
	return out
}

// Lookup returns the known-good entry for a package identifier.
func (r *Registry) Lookup(pkg string) (Entry, bool) {
	e, ok := r.entries[normalizePackage(pkg)]
	return e, ok
}

// Deprecated returns the deprecation record for a package identifier.
func (r *Registry) Deprecated(pkg string) (DeprecatedEntry, bool) {
	d, ok := r.deprecated[normalizePackage(pkg)]
	return d, ok
}

// ValidatePackage classifies a package identifier as verified, deprecated, or
// unknown. Deprecated wins over verified so stale entries cannot mask a
// deprecation.
func (r *Registry) ValidatePackage(pkg string) Validation {
	if d, ok := r.Deprecated(pkg); ok {
		return Validation{
			Package:     pkg,
			Status:      PackageDeprecated,
			Reason:      d.Reason,
			Alternative: d.Alternative,
		}
	}

	if _, ok := r.Lookup(pkg); ok {
		return Validation{Package: pkg, Status: PackageVerified}
	}

	return Validation{Package: pkg, Status: PackageUnknown}
}

// normalizePackage lowercases an identifier and strips a trailing @version,
// preserving scoped package prefixes such as @scope/name.
func normalizePackage(pkg string) string {
	pkg = strings.ToLower(strings.TrimSpace(pkg))
	if idx := strings.LastIndex(pkg, "@"); idx > 0 {
		pkg = pkg[:idx]
	}
	return pkg
}
