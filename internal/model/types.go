// Package model provides types for chat model operations.
package model

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Finish reasons reported by the backend.
const (
	FinishToolCalls = "tool_calls"
	FinishStop      = "stop"
)

// Message is one entry in a conversation. Messages are append-only:
// once part of a conversation they are never mutated.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID ties a tool message back to the assistant request it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
// Arguments is the raw JSON payload, not yet validated.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a callable tool in the schema handed to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request represents a chat completion request.
type Request struct {
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	JSON        bool      `json:"json,omitempty"` // request a JSON object response
	Temperature float64   `json:"temperature,omitempty"`
}

// Response represents a chat completion response: either a plain text
// reply or a batch of requested tool calls.
type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
	TokensUsed   int        `json:"tokens_used"`
	Model        string     `json:"model"`
}

// WantsTools reports whether the model asked for tool invocations.
func (r *Response) WantsTools() bool {
	return len(r.ToolCalls) > 0
}
