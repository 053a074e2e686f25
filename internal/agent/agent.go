// Package agent bridges a reasoning model's function-calling
// convention to a tool provider's MCP invocation transport.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lingshu/internal/llm"
	"lingshu/internal/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Provider is the tool provider the agent dispatches to
type Provider interface {
	Tools() []*mcp.Tool
	CallTool(ctx context.Context, toolName string, arguments map[string]any) (*mcp.CallToolResult, error)
}

// Reasoner is the general-purpose model that decides which tools to call
type Reasoner interface {
	ChatWithTools(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

type Agent struct {
	reasoner Reasoner
	provider Provider
	log      *logger.Logger
}

func New(reasoner Reasoner, provider Provider, log *logger.Logger) *Agent {
	return &Agent{
		reasoner: reasoner,
		provider: provider,
		log:      log,
	}
}

// CallOutcome is the result of one dispatched (or rejected) tool call
type CallOutcome struct {
	ToolName  string
	Arguments map[string]any
	Output    string
	Err       error
}

// Output is the result of one agent run: either the model's direct
// reply or the outcomes of its requested tool calls
type Output struct {
	Reply string
	Calls []*CallOutcome
}

// Run performs a single reasoning turn: discover tools, offer them to
// the reasoning model, then dispatch any requested calls strictly in
// the order the model emitted them, each awaited before the next.
func (a *Agent) Run(ctx context.Context, query string) (*Output, error) {
	start := time.Now()
	a.log.SessionStart(query)

	descriptors := a.provider.Tools()
	defs, err := TranslateTools(descriptors)
	if err != nil {
		return nil, fmt.Errorf("tool translation failed: %w", err)
	}
	a.log.Info("Discovered %d tool(s) from provider", len(defs))

	resp, err := a.reasoner.ChatWithTools(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: query}},
		Tools:    defs,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning model call failed: %w", err)
	}

	// No tool calls: surface the model's reply unchanged
	if len(resp.Message.ToolCalls) == 0 {
		a.log.AgentResponse(resp.Message.Content)
		a.log.SessionEnd(time.Since(start), 0)
		return &Output{Reply: resp.Message.Content}, nil
	}

	schemas, err := schemasByName(descriptors)
	if err != nil {
		return nil, fmt.Errorf("tool translation failed: %w", err)
	}

	a.log.Info("Model requested %d tool call(s)", len(resp.Message.ToolCalls))

	output := &Output{}
	for _, call := range resp.Message.ToolCalls {
		output.Calls = append(output.Calls, a.dispatch(ctx, schemas, call))
	}

	a.log.SessionEnd(time.Since(start), len(output.Calls))
	return output, nil
}

// dispatch validates and forwards one model-issued tool call. A call
// that fails validation is rejected, never forwarded.
func (a *Agent) dispatch(ctx context.Context, schemas map[string]map[string]any, call *llm.ToolCall) *CallOutcome {
	name := call.Function.Name
	a.log.ToolCall(name, call.Function.Arguments)
	start := time.Now()

	schema, ok := schemas[name]
	if !ok {
		err := fmt.Errorf("model requested unknown tool %q", name)
		a.log.ToolResult(name, false, err.Error(), time.Since(start))
		return &CallOutcome{ToolName: name, Err: err}
	}

	args, err := ValidateArguments(schema, call.Function.Arguments)
	if err != nil {
		err = fmt.Errorf("rejected call to %s: %w", name, err)
		a.log.ToolResult(name, false, err.Error(), time.Since(start))
		return &CallOutcome{ToolName: name, Err: err}
	}

	result, err := a.provider.CallTool(ctx, name, args)
	if err != nil {
		err = fmt.Errorf("tool invocation failed: %w", err)
		a.log.ToolResult(name, false, err.Error(), time.Since(start))
		return &CallOutcome{ToolName: name, Arguments: args, Err: err}
	}

	// The provider's envelope is relayed verbatim, error envelopes included
	output := resultText(result)
	a.log.ToolResult(name, true, output, time.Since(start))
	return &CallOutcome{ToolName: name, Arguments: args, Output: output}
}

func schemasByName(tools []*mcp.Tool) (map[string]map[string]any, error) {
	schemas := make(map[string]map[string]any, len(tools))
	for _, t := range tools {
		schema, err := schemaMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		schemas[t.Name] = schema
	}
	return schemas, nil
}

// resultText flattens an MCP result's content parts into a string
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, item := range result.Content {
		switch c := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		default:
			data, err := json.Marshal(item)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[unrenderable content: %T]", item))
			} else {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}
