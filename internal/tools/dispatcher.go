package tools

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/emissary-ai/emissary/internal/model"
)

// Error tags carried in tool-result payloads handed back to the model.
// They are recovered locally and never fail the turn; the model sees them
// and can adjust its next request.
const (
	ErrTagUnknownTool       = "unknown_tool"
	ErrTagMissingParameters = "missing_parameters"
	ErrTagInvalidArguments  = "invalid_arguments"
	ErrTagExecutionFailed   = "execution_failed"
)

// Dispatcher validates and executes batches of tool calls requested by
// the model within a single assistant message.
type Dispatcher struct {
	registry *Registry
	log      *logrus.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{registry: registry, log: log}
}

// Dispatch processes an ordered batch of tool calls and returns one tool
// message per call, order preserved, each tagged with the originating
// call ID. Every request gets a result: the model backend requires a tool
// result for each tool call before it will process further turns.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []model.ToolCall) []model.Message {
	results := make([]model.Message, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.dispatchOne(ctx, call))
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, call model.ToolCall) model.Message {
	log := d.log.WithFields(logrus.Fields{
		"tool":    call.Name,
		"call_id": call.ID,
	})
	log.Info("tool called")

	required, known := d.registry.Required(call.Name)
	if !known {
		log.Warn("unknown tool requested")
		return toolMessage(call.ID, errorPayload(ErrTagUnknownTool, map[string]any{
			"tool": call.Name,
		}))
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			log.WithError(err).Warn("malformed tool arguments")
			return toolMessage(call.ID, errorPayload(ErrTagInvalidArguments, nil))
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		log.WithField("missing", missing).Warn("missing required parameters")
		return toolMessage(call.ID, errorPayload(ErrTagMissingParameters, map[string]any{
			"missing": missing,
		}))
	}

	result, err := d.registry.Execute(ctx, call.Name, args)
	if err != nil {
		log.WithError(err).Error("tool execution failed")
		return toolMessage(call.ID, errorPayload(ErrTagExecutionFailed, nil))
	}
	if !result.Success {
		return toolMessage(call.ID, errorPayload(ErrTagExecutionFailed, map[string]any{
			"detail": result.Error,
		}))
	}

	content, err := json.Marshal(result.Data)
	if err != nil {
		log.WithError(err).Error("tool result not serializable")
		return toolMessage(call.ID, errorPayload(ErrTagExecutionFailed, nil))
	}
	return toolMessage(call.ID, string(content))
}

func toolMessage(callID, content string) model.Message {
	return model.Message{
		Role:       model.RoleTool,
		Content:    content,
		ToolCallID: callID,
	}
}

func errorPayload(tag string, extra map[string]any) string {
	payload := map[string]any{"error": tag}
	for k, v := range extra {
		payload[k] = v
	}
	content, _ := json.Marshal(payload)
	return string(content)
}
