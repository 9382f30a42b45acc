// Package chat holds the conversation the agent loop grows during one query.
package chat

import (
	"iter"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
)

// Chat is an append-only message log. The zero value is empty and usable.
// It is not safe for concurrent use.
type Chat struct {
	log []message.Message
}

// New returns a chat seeded with msgs.
func New(msgs ...message.Message) *Chat {
	return &Chat{log: msgs}
}

func (c *Chat) Append(msgs ...message.Message) {
	c.log = append(c.log, msgs...)
}

func (c *Chat) Len() int { return len(c.log) }

// Messages returns a snapshot the caller may modify.
func (c *Chat) Messages() []message.Message {
	return append([]message.Message(nil), c.log...)
}

// All yields the messages in order.
func (c *Chat) All() iter.Seq[message.Message] {
	return func(yield func(message.Message) bool) {
		for _, m := range c.log {
			if !yield(m) {
				return
			}
		}
	}
}

// SystemPrompt is the text of the first system message, if any.
func (c *Chat) SystemPrompt() string {
	for m := range c.All() {
		if m.Role == role.System {
			return m.TextContent()
		}
	}

	return ""
}

// ToolCallName looks up the tool requested under id, newest call first.
func (c *Chat) ToolCallName(id string) (string, bool) {
	for i := len(c.log) - 1; i >= 0; i-- {
		for _, tc := range c.log[i].ToolCalls() {
			if tc.ID == id {
				return tc.Name, true
			}
		}
	}

	return "", false
}

// Unanswered lists tool calls still waiting for a result, in request order.
// Every provider rejects a history where this is non-empty.
func (c *Chat) Unanswered() []content.ToolCall {
	done := map[string]bool{}
	for m := range c.All() {
		for _, tr := range m.ToolResults() {
			done[tr.ToolCallID] = true
		}
	}

	var pending []content.ToolCall
	for m := range c.All() {
		for _, tc := range m.ToolCalls() {
			if !done[tc.ID] {
				pending = append(pending, tc)
			}
		}
	}

	return pending
}
