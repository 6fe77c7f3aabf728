package bridge

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// fieldKind is the checked shape of a declared input field. Anything a server
// declares beyond these collapses to kindAny: upstream schemas are advisory,
// and a bad declaration must never make a working tool uninvocable.
type fieldKind int

const (
	kindAny fieldKind = iota
	kindString
	kindNumber
	kindBoolean
	kindArray
)

type fieldCheck struct {
	kind     fieldKind
	required bool
}

// inputValidator holds field-level checks derived from a tool's declared
// input schema.
type inputValidator struct {
	fields map[string]fieldCheck
}

// newInputValidator compiles the declared schema into per-field checks.
// Fields absent from the required list are optional.
func newInputValidator(schema mcp.ToolInputSchema) *inputValidator {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	fields := make(map[string]fieldCheck, len(schema.Properties))
	for name, raw := range schema.Properties {
		fields[name] = fieldCheck{
			kind:     declaredKind(raw),
			required: required[name],
		}
	}

	// Required fields can be declared without a property entry.
	for name := range required {
		if _, ok := fields[name]; !ok {
			fields[name] = fieldCheck{kind: kindAny, required: true}
		}
	}

	return &inputValidator{fields: fields}
}

// Validate checks the supplied arguments against the compiled schema.
// Arguments outside the schema pass through unchecked.
func (v *inputValidator) Validate(args map[string]any) error {
	for name, check := range v.fields {
		value, present := args[name]
		if !present {
			if check.required {
				return fmt.Errorf("missing required argument '%s'", name)
			}
			continue
		}
		if err := checkKind(name, check.kind, value); err != nil {
			return err
		}
	}
	return nil
}

func declaredKind(raw any) fieldKind {
	prop, ok := raw.(map[string]any)
	if !ok {
		return kindAny
	}
	declared, ok := prop["type"].(string)
	if !ok {
		return kindAny
	}

	switch declared {
	case "string":
		return kindString
	case "number", "integer":
		return kindNumber
	case "boolean":
		return kindBoolean
	case "array":
		return kindArray
	default:
		return kindAny
	}
}

func checkKind(name string, kind fieldKind, value any) error {
	if value == nil {
		return nil
	}

	switch kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument '%s' must be a string", name)
		}
	case kindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64, uint, uint32, uint64:
		default:
			return fmt.Errorf("argument '%s' must be a number", name)
		}
	case kindBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument '%s' must be a boolean", name)
		}
	case kindArray:
		switch value.(type) {
		case []any, []string, []float64:
		default:
			return fmt.Errorf("argument '%s' must be an array", name)
		}
	}
	return nil
}
