package ai

import (
	"context"
	"errors"
)

// ErrProviderDisabled is returned by NopProvider for every call.
var ErrProviderDisabled = errors.New("llm provider disabled")

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("llm returned empty response")

// Message roles understood by every provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion call.
type Request struct {
	Messages    []Message
	Temperature float64
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// LLMProvider sends a prompt to an LLM and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
