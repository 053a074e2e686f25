package llm

import (
	"context"
	"fmt"
)

// Client is a chat-completions endpoint. Generate serves the provider's
// single prompt-plus-image calls; ChatWithTools serves the agent's
// function-calling turn.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
	ChatWithTools(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Model() string
}

// GenerateRequest is a single text-generation call against the backend model
type GenerateRequest struct {
	Prompt string
	// ImageData is an optional base64-encoded image embedded as a PNG data URI
	ImageData   string
	MaxTokens   int
	Temperature float32
}

type ChatRequest struct {
	Messages    []Message
	Tools       []*ToolDefinition
	Temperature float32
	MaxTokens   int
}

type ChatResponse struct {
	Message    Message
	StopReason StopReason
	Usage      Usage
}

type ToolDefinition struct {
	Type     string
	Function *FunctionDef
}

type FunctionDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// BackendError wraps any transport or API-level fault from the model
// endpoint. Raw client errors never cross this package's boundary; the
// tool operations rely on that to build their error envelopes.
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("model call failed (%s): %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
