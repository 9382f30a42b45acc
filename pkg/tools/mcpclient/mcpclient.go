// Package mcpclient provides the remote toolbox.Registry: the tool catalog of
// an MCP server reached over stdio or SSE.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var _ toolbox.Registry = (*MCPClient)(nil)

// MCPClient lists the server's tools once at connect time and forwards
// invocations over the open session.
type MCPClient struct {
	session *mcp.ClientSession
	server  mcp.Implementation
	hint    string
	tools   []toolbox.Tool
	byName  map[string]bool
}

// New starts command as a stdio MCP server and connects to it. Closing the
// client stops the process.
func New(ctx context.Context, command string, args ...string) (*MCPClient, error) {
	//nolint:gosec // the command comes from the user's config
	return connect(ctx, &mcp.CommandTransport{Command: exec.Command(command, args...)})
}

// NewSSE connects to an MCP server listening for SSE at url.
func NewSSE(ctx context.Context, url string) (*MCPClient, error) {
	return connect(ctx, &mcp.SSEClientTransport{Endpoint: url})
}

func connect(ctx context.Context, t mcp.Transport) (*MCPClient, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "creative-content-studio", Version: "0.1.0"}, nil)

	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: connect: %w", err)
	}

	c := &MCPClient{session: session}
	if ir := session.InitializeResult(); ir != nil {
		c.hint = ir.Instructions
		if ir.ServerInfo != nil {
			c.server = *ir.ServerInfo
		}
	}

	if err := c.listTools(ctx); err != nil {
		_ = session.Close()
		return nil, err
	}

	return c, nil
}

func (c *MCPClient) listTools(ctx context.Context) error {
	res, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("mcpclient: list tools: %w", err)
	}

	c.tools = make([]toolbox.Tool, 0, len(res.Tools))
	c.byName = make(map[string]bool, len(res.Tools))
	for _, rt := range res.Tools {
		schema, err := json.Marshal(rt.InputSchema)
		if err != nil {
			return fmt.Errorf("mcpclient: tool %q: schema: %w", rt.Name, err)
		}

		c.tools = append(c.tools, toolbox.Tool{
			Name:        rt.Name,
			Description: rt.Description,
			InputSchema: schema,
		})
		c.byName[rt.Name] = true
	}

	return nil
}

// Server reports the name and version the server announced.
func (c *MCPClient) Server() (name, version string) {
	return c.server.Name, c.server.Version
}

// Instructions is the usage hint the server sent on initialize, if any.
func (c *MCPClient) Instructions() string { return c.hint }

// Tools returns the catalog in server order. The descriptors carry no
// handler; calls go through Invoke.
func (c *MCPClient) Tools() []toolbox.Tool {
	return append([]toolbox.Tool(nil), c.tools...)
}

// Invoke runs name on the server and returns the raw *mcp.CallToolResult. A
// result flagged IsError is returned as a value; only protocol failures are
// errors.
func (c *MCPClient) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	if !c.byName[name] {
		return nil, fmt.Errorf("%w: %s", toolbox.ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("mcpclient: call %s: %w", name, err)
	}

	return res, nil
}

// Close ends the session. For a spawned server the SDK closes its stdin and
// escalates to signals if it does not exit.
func (c *MCPClient) Close() error {
	return c.session.Close()
}
