package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/normalize"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// observedRegistry publishes tool call events around every invocation.
type observedRegistry struct {
	toolbox.Registry
	events *EventBus
	agent  string
}

func (r observedRegistry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	r.events.Publish(Event{
		Kind:      EventToolCallStart,
		Agent:     r.agent,
		Timestamp: time.Now(),
		Data:      ToolCall{Name: name, Args: args},
	})

	out, err := r.Registry.Invoke(ctx, name, args)

	failure := err
	if failure == nil {
		failure = reportedFailure(out)
	}

	r.events.Publish(Event{
		Kind:      EventToolCallEnd,
		Agent:     r.agent,
		Timestamp: time.Now(),
		Data:      ToolCall{Name: name, Args: args, Err: failure},
	})

	return out, err
}

// reportedFailure returns the failure a tool described in its own result, or
// nil when the result does not report one.
func reportedFailure(out any) error {
	text := normalize.Normalize(out)

	var doc struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(text), &doc) == nil && doc.Status == "error" {
		if doc.Message == "" {
			doc.Message = "tool reported an error"
		}
		return errors.New(doc.Message)
	}

	if res, ok := out.(*mcp.CallToolResult); ok && res != nil && res.IsError {
		return errors.New(text)
	}

	return nil
}
