// Package output renders CLI command results in a user-selected format.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FormatText renders results for humans reading a terminal.
	FormatText Format = "text"

	// FormatJSON renders results as a JSON document.
	FormatJSON Format = "json"

	// FormatYAML renders results as a YAML document.
	FormatYAML Format = "yaml"
)

// Format selects how command results are rendered.
type Format string

// AllowedFormats returns the formats a command's --format flag accepts.
func AllowedFormats() []Format {
	formats := []Format{FormatText, FormatJSON, FormatYAML}
	slices.Sort(formats)
	return formats
}

// ParseFormat normalizes and validates a --format flag value.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format '%s' (allowed: %v)", raw, AllowedFormats())
	}
}

// TextFunc renders one result as terminal text.
type TextFunc[T any] func(w io.Writer, item T) error

// Handler renders results of type T in a fixed format.
// NewHandler should be used to create instances of Handler.
type Handler[T any] struct {
	out    io.Writer
	format Format
	text   TextFunc[T]
}

// NewHandler creates a handler writing to w in the given format. The text
// function is used for FormatText; JSON and YAML honor struct tags.
func NewHandler[T any](w io.Writer, format Format, text TextFunc[T]) *Handler[T] {
	return &Handler[T]{
		out:    w,
		format: format,
		text:   text,
	}
}

// Writer returns the underlying io.Writer results are written to.
func (h *Handler[T]) Writer() io.Writer {
	return h.out
}

// HandleResult renders a single result in the configured format.
func (h *Handler[T]) HandleResult(item T) error {
	switch h.format {
	case FormatJSON:
		enc := json.NewEncoder(h.out)
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	case FormatYAML:
		enc := yaml.NewEncoder(h.out)
		defer func() {
			_ = enc.Close()
		}()
		enc.SetIndent(2)
		return enc.Encode(item)
	default:
		return h.text(h.out, item)
	}
}

// HandleError renders the error in the configured format and returns it so
// command exit codes stay accurate.
func (h *Handler[T]) HandleError(err error) error {
	payload := struct {
		Error string `json:"error" yaml:"error"`
	}{err.Error()}

	switch h.format {
	case FormatJSON:
		enc := json.NewEncoder(h.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
	case FormatYAML:
		enc := yaml.NewEncoder(h.out)
		enc.SetIndent(2)
		_ = enc.Encode(payload)
		_ = enc.Close()
	default:
		fmt.Fprintf(h.out, "Error: %s\n", err)
	}
	return err
}
