// Package content defines what a message can carry: text, tool requests and
// tool results.
package content

// Kind names a part type.
type Kind string

const (
	KindText       Kind = "text"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
)

// Part is one element of a message body.
type Part interface {
	Kind() Kind
}

type Text struct {
	Text string
}

func (Text) Kind() Kind { return KindText }

// ToolCall is a model's request to run a tool. Arguments is the raw JSON the
// model produced and is decoded only when the call is dispatched. Metadata
// holds provider data that has to be echoed back on the next turn, such as
// Gemini thought signatures.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Metadata  map[string]string
}

func (ToolCall) Kind() Kind { return KindToolCall }

// ToolResult is the normalized text a tool returned for the call ToolCallID.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
	IsError    bool
}

func (ToolResult) Kind() Kind { return KindToolResult }
