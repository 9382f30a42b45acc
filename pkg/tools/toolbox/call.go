package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/normalize"
)

// ParseArguments decodes a tool call's raw argument text into a mapping.
// Blank input yields an empty mapping. On malformed input it returns an
// empty, non-nil mapping together with the decode error so the caller can
// report it and carry on.
func ParseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}, fmt.Errorf("toolbox: parse arguments: %w", err)
	}

	if args == nil {
		args = map[string]any{}
	}

	return args, nil
}

// Call is the invocation boundary between a tool call and a Registry. It
// parses the arguments, invokes the tool, and normalizes whatever comes
// back. Failures never escape: an unknown tool, a handler error, or a
// transport error all become an error payload with IsError set.
func Call(ctx context.Context, reg Registry, tc content.ToolCall, log *slog.Logger) content.ToolResult {
	if log == nil {
		log = slog.Default()
	}

	args, err := ParseArguments(tc.Arguments)
	if err != nil {
		log.WarnContext(ctx, "could not parse tool arguments, using empty arguments",
			"tool", tc.Name,
			"call_id", tc.ID,
			"error", err,
		)
	}

	result := content.ToolResult{ToolCallID: tc.ID, Name: tc.Name}

	raw, err := reg.Invoke(ctx, tc.Name, args)
	switch {
	case errors.Is(err, ErrUnknownTool):
		result.Content = normalize.ErrorPayload("Unknown tool: " + tc.Name)
		result.IsError = true
	case err != nil:
		log.ErrorContext(ctx, "tool execution failed", "tool", tc.Name, "call_id", tc.ID, "error", err)
		result.Content = normalize.ErrorPayload("Tool execution failed: " + err.Error())
		result.IsError = true
	default:
		result.Content = normalize.Normalize(raw)
	}

	return result
}
