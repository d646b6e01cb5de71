// Package model provides the chat model interface and clients.
package model

import "context"

// Model is the boundary to a chat-completions backend.
type Model interface {
	// Complete runs one chat completion over the full message list.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// IsAvailable checks if the backend is configured.
	IsAvailable() bool

	// Name returns the model identifier.
	Name() string
}
