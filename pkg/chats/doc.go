// Package chats provides the provider-agnostic conversation model used by
// the studio agent.
//
// It is organized into sub-packages:
//   - [github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role]: conversation roles (system, user, assistant, tool)
//   - [github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content]: content parts (text, tool call, tool result)
//   - [github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message]: messages composed of a role, sender, and content parts
//   - [github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat]: append-only conversation container
//
// No provider or API code is included. Transport adapters translate these
// types to and from their wire formats.
package chats
