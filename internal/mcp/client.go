package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client wraps the official MCP SDK client and session for a single
// tool provider reached over streamable HTTP
type Client struct {
	client  *mcp.Client
	session *mcp.ClientSession
	tools   []*mcp.Tool
}

// NewClient connects to the provider at url and caches its tool list
func NewClient(ctx context.Context, url string) (*Client, error) {
	impl := &mcp.Implementation{
		Name:    "lingshu-client",
		Version: "1.0.0",
	}
	client := mcp.NewClient(impl, nil)

	transport := &mcp.StreamableClientTransport{Endpoint: url}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	// Collect tools from server
	var tools []*mcp.Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		tools = append(tools, tool)
	}

	return &Client{
		client:  client,
		session: session,
		tools:   tools,
	}, nil
}

// Tools returns the cached list of tool descriptors
func (c *Client) Tools() []*mcp.Tool {
	return c.tools
}

// CallTool invokes a tool with the given parameters
func (c *Client) CallTool(ctx context.Context, toolName string, arguments map[string]any) (*mcp.CallToolResult, error) {
	params := &mcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	}

	result, err := c.session.CallTool(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("call tool request failed: %w", err)
	}

	return result, nil
}

// Close shuts down the client and session
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}
