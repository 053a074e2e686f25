package tool

import (
	"context"
	"encoding/json"
)

// Tool defines the interface that all provider tools must implement.
// The Parameters schema is the calling contract an orchestrating agent
// presents to a reasoning model, so it must mirror the parameters
// Execute actually accepts.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a brief description of what this tool does
	Description() string

	// Parameters returns the JSON schema for the tool's parameters
	Parameters() map[string]any

	// Execute runs the tool with the given parameters. It never faults:
	// validation and backend failures surface as error envelopes.
	Execute(ctx context.Context, params json.RawMessage) Envelope
}
