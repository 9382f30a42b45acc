package toolbox

import (
	"context"
	"fmt"
)

var _ Registry = (*ToolBox)(nil)

// ToolBox is the in-process Registry. Tools lists entries in the order they
// were first registered.
type ToolBox struct {
	byName map[string]Tool
	names  []string
}

func New() *ToolBox {
	return &ToolBox{byName: map[string]Tool{}}
}

// Register adds tools. Re-registering a name swaps the tool but keeps its
// original position.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		if _, seen := tb.byName[t.Name]; !seen {
			tb.names = append(tb.names, t.Name)
		}
		tb.byName[t.Name] = t
	}
}

func (tb *ToolBox) Tools() []Tool {
	out := make([]Tool, len(tb.names))
	for i, n := range tb.names {
		out[i] = tb.byName[n]
	}

	return out
}

// Invoke runs the handler registered under name.
func (tb *ToolBox) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := tb.byName[name]
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	case t.Handler == nil:
		return nil, fmt.Errorf("toolbox: tool %q has no handler", name)
	}

	return t.Handler(ctx, args)
}
