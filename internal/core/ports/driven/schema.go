package driven

// SchemaType is a JSON schema primitive type.
type SchemaType string

// Schema types used in response declarations.
const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaNumber  SchemaType = "number"
	SchemaInteger SchemaType = "integer"
	SchemaBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral subset of JSON schema.
// Adapters translate it to their own schema representation.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
}

// Map renders the schema as a JSON-schema document.
// When strict is true every object disallows additional properties.
func (s *Schema) Map(strict bool) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Items != nil {
		out["items"] = s.Items.Map(strict)
	}
	if s.Type == SchemaObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.Map(strict)
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
		if strict {
			out["additionalProperties"] = false
		}
	}
	return out
}
