// Package tools groups the pieces that let the agent use studio tools.
//
// The toolbox package defines the Tool descriptor, the Registry the agent
// loop calls through and the Call boundary that turns every invocation into
// text. The normalize package reduces arbitrary tool output to that text.
// The mcpclient package is a Registry backed by a remote MCP server, and
// mcpserver publishes any Registry to MCP clients. Both MCP packages build on
// github.com/modelcontextprotocol/go-sdk and only share the toolbox types.
package tools
