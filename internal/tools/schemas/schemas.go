// Package schemas provides declarative JSON Schema definitions for tool calling.
//
// The declared schema is the single source of truth: it is mirrored into
// the tool description handed to the model and drives the dispatcher's
// required-parameter validation.
package schemas

import (
	"encoding/json"
	"sort"
)

// Schema defines a tool's JSON schema in OpenAI function calling format.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`

	required []string
}

// SchemaBuilder provides a fluent interface for building tool schemas.
type SchemaBuilder struct {
	schema *Schema
}

// NewSchema creates a new schema builder with the given name and description.
// Undeclared arguments are rejected at the model-backend level
// (additionalProperties: false).
func NewSchema(name, description string) *SchemaBuilder {
	return &SchemaBuilder{
		schema: &Schema{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           make(map[string]any),
				"required":             make([]string, 0),
				"additionalProperties": false,
			},
		},
	}
}

// AddParam adds a parameter to the schema.
func (b *SchemaBuilder) AddParam(name, paramType, description string, required bool) *SchemaBuilder {
	return b.addParam(name, paramType, description, "", required)
}

// AddParamWithDefault adds a parameter with a default value.
func (b *SchemaBuilder) AddParamWithDefault(name, paramType, description, defaultValue string, required bool) *SchemaBuilder {
	return b.addParam(name, paramType, description, defaultValue, required)
}

func (b *SchemaBuilder) addParam(name, paramType, description, defaultValue string, required bool) *SchemaBuilder {
	props := b.schema.Parameters["properties"].(map[string]any)
	paramDef := map[string]any{
		"type":        paramType,
		"description": description,
	}
	if defaultValue != "" {
		paramDef["default"] = defaultValue
	}
	props[name] = paramDef
	if required {
		req := b.schema.Parameters["required"].([]string)
		b.schema.Parameters["required"] = append(req, name)
		b.schema.required = append(b.schema.required, name)
	}
	return b
}

// Build returns the constructed schema.
func (b *SchemaBuilder) Build() *Schema {
	return b.schema
}

// Required returns the names of the schema's required parameters.
func (s *Schema) Required() []string {
	return s.required
}

// Registry holds all tool schemas. Populated once at startup, read-only after.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry creates a new empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema to the registry.
func (r *Registry) Register(schema *Schema) {
	r.schemas[schema.Name] = schema
}

// Get retrieves a schema by name.
func (r *Registry) Get(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// List returns all registered schema names, sorted for deterministic order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered schemas, sorted by name.
func (r *Registry) All() []*Schema {
	out := make([]*Schema, 0, len(r.schemas))
	for _, name := range r.List() {
		out = append(out, r.schemas[name])
	}
	return out
}

// ToOpenAIFormat converts schemas to OpenAI function calling format.
func (r *Registry) ToOpenAIFormat() []map[string]any {
	result := make([]map[string]any, 0, len(r.schemas))
	for _, schema := range r.All() {
		result = append(result, map[string]any{
			"type":     "function",
			"function": schema,
		})
	}
	return result
}

// ToJSON returns the registry as JSON for debugging.
func (r *Registry) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r.schemas, "", "  ")
}
