// Package mcpserver exposes a toolbox.Registry to MCP clients over stdio.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer answers tools/list and tools/call for the registries handed to
// Register. Calls are dispatched through toolbox.Call, so a remote client sees
// the same normalized text and error payloads as the in-process agent.
type MCPServer struct {
	server *mcp.Server
	log    *slog.Logger
	names  []string
}

// Option configures an MCPServer.
type Option func(*mcp.ServerOptions)

// WithInstructions sets the usage hint returned to clients on initialize.
func WithInstructions(text string) Option {
	return func(o *mcp.ServerOptions) { o.Instructions = text }
}

// New creates a server announcing itself as name at version. A nil log falls
// back to slog.Default.
func New(name, version string, log *slog.Logger, opts ...Option) *MCPServer {
	if log == nil {
		log = slog.Default()
	}

	so := &mcp.ServerOptions{}
	for _, o := range opts {
		o(so)
	}

	impl := &mcp.Implementation{Name: name, Version: version}

	return &MCPServer{server: mcp.NewServer(impl, so), log: log}
}

// Register adds every tool of reg in catalog order. A later registration of
// the same name replaces the earlier one.
func (s *MCPServer) Register(reg toolbox.Registry) {
	handler := s.dispatch(reg)

	for _, t := range reg.Tools() {
		s.server.AddTool(sdkTool(t), handler)
		s.names = append(s.names, t.Name)
	}
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or in reaches EOF.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info("mcp server ready", "tools", s.names)

	return s.run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: writeCloser{out},
	})
}

func (s *MCPServer) run(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

func sdkTool(t toolbox.Tool) *mcp.Tool {
	schema := t.InputSchema
	if len(schema) == 0 {
		schema = []byte(`{"type":"object"}`)
	}

	return &mcp.Tool{Name: t.Name, Description: t.Description, InputSchema: schema}
}

func (s *MCPServer) dispatch(reg toolbox.Registry) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call := content.ToolCall{Name: req.Params.Name, Arguments: string(req.Params.Arguments)}
		res := toolbox.Call(ctx, reg, call, s.log)

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Content}},
			IsError: res.IsError,
		}, nil
	}
}

// writeCloser keeps the caller's writer open when the transport closes.
type writeCloser struct{ io.Writer }

func (writeCloser) Close() error { return nil }
