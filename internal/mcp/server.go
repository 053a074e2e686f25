package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"lingshu/internal/logger"
	"lingshu/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const shutdownTimeout = 5 * time.Second

// Server exposes every registered tool over the MCP streamable HTTP
// transport. Each invocation is self-contained, so concurrent sessions
// need no coordination.
type Server struct {
	server *mcp.Server
	log    *logger.Logger
}

// NewServer builds an MCP server from a tool registry. Each tool is
// registered with its exact Parameters schema so the calling contract
// the agent discovers matches what Execute accepts.
func NewServer(registry *tool.Registry, log *logger.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    "lingshu",
		Version: "1.0.0",
	}
	server := mcp.NewServer(impl, nil)

	for _, t := range registry.List() {
		server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		}, toolHandler(t, log))
	}

	return &Server{
		server: server,
		log:    log,
	}
}

// toolHandler wraps a tool's Execute behind the MCP call contract.
// The envelope is returned as both JSON text and structured content;
// error envelopes are normal results at the protocol level, the status
// field is the discriminant.
func toolHandler(t tool.Tool, log *logger.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		log.ToolCall(t.Name(), string(args))

		start := time.Now()
		env := t.Execute(ctx, args)
		payload := env.JSON()

		log.ToolResult(t.Name(), !env.IsError(), payload, time.Since(start))

		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: payload}},
			StructuredContent: env,
		}, nil
	}
}

// Serve binds host:port, mounts the streamable HTTP handler at path,
// and blocks until the context is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, host string, port int, path string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	s.log.Info("MCP server listening on http://%s%s", addr, path)

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP server failed: %w", err)
	}
}
