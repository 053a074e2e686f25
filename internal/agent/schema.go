package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"lingshu/internal/llm"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TranslateTools converts MCP tool descriptors into the reasoning
// model's function-calling shape. The transformation is a generic map
// operation over the descriptor's input schema; no static knowledge of
// tool shapes is involved.
func TranslateTools(tools []*mcp.Tool) ([]*llm.ToolDefinition, error) {
	defs := make([]*llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		schema, err := schemaMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}

		params := map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []any{},
		}
		if v, ok := schema["type"]; ok {
			params["type"] = v
		}
		if v, ok := schema["properties"]; ok {
			params["properties"] = v
		}
		if v, ok := schema["required"]; ok {
			params["required"] = v
		}

		defs = append(defs, &llm.ToolDefinition{
			Type: "function",
			Function: &llm.FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return defs, nil
}

// schemaMap normalizes a descriptor's input schema to map[string]any.
// The SDK declares InputSchema as any, so a marshal round trip covers
// whatever concrete type it arrived as.
func schemaMap(schema any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{}, nil
	}

	if m, ok := schema.(map[string]any); ok {
		return m, nil
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("unreadable input schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unreadable input schema: %w", err)
	}
	return m, nil
}

// ValidateArguments strictly parses a model-issued argument string and
// checks it against the tool's input schema: the payload must be a JSON
// object, every key must appear in the schema's properties, and every
// required key must be present. Anything else fails closed: the call
// is rejected rather than forwarded.
func ValidateArguments(schema map[string]any, raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("malformed arguments: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("malformed arguments: trailing data after JSON object")
	}
	if args == nil {
		return nil, fmt.Errorf("malformed arguments: expected a JSON object")
	}

	properties, _ := schema["properties"].(map[string]any)
	for key := range args {
		if _, ok := properties[key]; !ok {
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
	}

	for _, key := range requiredKeys(schema["required"]) {
		if _, ok := args[key]; !ok {
			return nil, fmt.Errorf("missing required parameter %q", key)
		}
	}

	return args, nil
}

// requiredKeys accepts both []any (schemas decoded from JSON) and
// []string (schemas built in-process)
func requiredKeys(required any) []string {
	switch v := required.(type) {
	case []string:
		return v
	case []any:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	default:
		return nil
	}
}
