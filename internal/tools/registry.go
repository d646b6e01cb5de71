// Package tools provides a unified tool registry with schemas and executors.
package tools

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/emissary-ai/emissary/internal/model"
	"github.com/emissary-ai/emissary/internal/tools/executor"
	"github.com/emissary-ai/emissary/internal/tools/schemas"
)

// Registry combines schemas and executors for complete tool management.
type Registry struct {
	schemas   *schemas.Registry
	executors *executor.Registry
}

// NewRegistry creates a new unified tool registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:   schemas.NewRegistry(),
		executors: executor.NewRegistry(),
	}
}

// Schemas returns the schema registry.
func (r *Registry) Schemas() *schemas.Registry {
	return r.schemas
}

// Executors returns the executor registry.
func (r *Registry) Executors() *executor.Registry {
	return r.executors
}

// Register registers both a schema and executor for a tool.
func (r *Registry) Register(tool executor.Tool, schema *schemas.Schema) {
	r.executors.Register(tool)
	r.schemas.Register(schema)
}

// ModelTools returns all schemas as tool definitions for the model request.
func (r *Registry) ModelTools() []model.Tool {
	all := r.schemas.All()
	out := make([]model.Tool, 0, len(all))
	for _, s := range all {
		out = append(out, model.Tool{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.Parameters,
		})
	}
	return out
}

// Required returns the declared required parameter names for a tool.
// The second return is false when the tool is not registered.
func (r *Registry) Required(name string) ([]string, bool) {
	s, ok := r.schemas.Get(name)
	if !ok {
		return nil, false
	}
	return s.Required(), true
}

// Execute runs a tool by name.
func (r *Registry) Execute(ctx context.Context, name string, input map[string]any) (*executor.Result, error) {
	return r.executors.Execute(ctx, name, input)
}

// Initialize registers the contact tools with their schemas and executors.
func (r *Registry) Initialize(notifier executor.Notifier, store executor.LeadStore, log *logrus.Logger) {
	r.Register(
		&executor.RecordUserDetails{Notifier: notifier, Store: store, Log: log},
		schemas.NewSchema("record_user_details",
			"Use this tool to record that a user is interested in being in touch and provided an email address, name, mobile number and notes (optional)").
			AddParam("email", "string", "The email address of this user", true).
			AddParamWithDefault("name", "string", "The user's name, if they provided it", "N/A", false).
			AddParamWithDefault("mobile_no", "string", "The mobile number of this user", "N/A", false).
			AddParamWithDefault("notes", "string", "Any additional information about the conversation that's worth recording to give context", "N/A", false).
			Build())

	r.Register(
		&executor.RecordUnknownQuestion{Notifier: notifier, Store: store, Log: log},
		schemas.NewSchema("record_unknown_question",
			"Always use this tool to record any question that couldn't be answered as you didn't know the answer").
			AddParam("question", "string", "The question that couldn't be answered", true).
			Build())
}
