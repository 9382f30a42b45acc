package toolbox

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnknownTool is returned by Registry.Invoke when the name is not in the
// catalog.
var ErrUnknownTool = errors.New("toolbox: unknown tool")

// Handler executes a tool with parsed arguments. The result may be any value
// the normalize package accepts.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool describes an executable tool: its name, description, and JSON Schema
// for the arguments. Handler is set for in-process tools and nil for
// descriptors discovered from a remote process.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Registry is the catalog the agent loop dispatches through. Implementations
// are read-only once constructed.
type Registry interface {
	// Tools returns the tool descriptors in a stable order.
	Tools() []Tool
	// Invoke runs the named tool. It returns an error wrapping ErrUnknownTool
	// when the name is not in the catalog.
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}
