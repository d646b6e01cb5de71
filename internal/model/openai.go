// Package model provides the OpenAI-compatible chat completions client.
package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

// OpenAIConfig configures the OpenAI-compatible client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Default: https://api.openai.com/v1
	Model   string // e.g., "gpt-4o-mini"
	Timeout time.Duration
}

// DefaultOpenAIConfig returns default configuration.
func DefaultOpenAIConfig(apiKey string) *OpenAIConfig {
	return &OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 120 * time.Second,
	}
}

// OpenAIClient implements Model using the OpenAI chat completions API.
// Any OpenAI-compatible endpoint works via BaseURL.
type OpenAIClient struct {
	cfg    *OpenAIConfig
	client *openai.Client
}

// NewOpenAIClient creates a new client.
func NewOpenAIClient(cfg *OpenAIConfig) *OpenAIClient {
	if cfg == nil {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// Complete sends the conversation to the backend and returns the reply
// or the batch of requested tool calls. Model call failures are fatal to
// the turn; there is no automatic retry here.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if c == nil || c.client == nil {
		return nil, apperrors.System(apperrors.CodeModelUnavailable, "openai client not initialized")
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toAPIMessages(req.Messages),
		Temperature: float32(req.Temperature),
	}
	for _, t := range req.Tools {
		apiReq.Tools = append(apiReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if req.JSON {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.Wrap(err, apperrors.CodeModelTimeout,
				"model call timed out", apperrors.CategoryTemporary)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			"chat completion failed", apperrors.CategoryTemporary)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.Temporary(apperrors.CodeModelInvalidResponse, "no choices in response")
	}

	choice := resp.Choices[0]
	out := &Response{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
		Model:        resp.Model,
	}
	for _, tc := range choice.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			// Some compatible backends omit call IDs.
			id = "call_" + uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

// IsAvailable checks if the client is configured.
func (c *OpenAIClient) IsAvailable() bool {
	return c != nil && c.cfg != nil && c.cfg.APIKey != ""
}

// Name returns the model name.
func (c *OpenAIClient) Name() string {
	if c.cfg != nil {
		return c.cfg.Model
	}
	return "openai"
}

// toAPIMessages converts conversation messages to the wire format.
func toAPIMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		apiMsg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, apiMsg)
	}
	return out
}
