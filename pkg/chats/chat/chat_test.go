package chat

import (
	"testing"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_ZeroValue(t *testing.T) {
	var c Chat

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Messages())
	assert.Empty(t, c.Unanswered())
	assert.Empty(t, c.SystemPrompt())
}

func TestChat_AppendKeepsOrder(t *testing.T) {
	c := New(message.NewText("user", role.User, "a thumbnail please"))
	c.Append(
		message.NewText("studio", role.Assistant, "which title?"),
		message.NewText("user", role.User, "Launch Day"),
	)

	require.Equal(t, 3, c.Len())

	var texts []string
	for m := range c.All() {
		texts = append(texts, m.TextContent())
	}
	assert.Equal(t, []string{"a thumbnail please", "which title?", "Launch Day"}, texts)
}

func TestChat_MessagesIsSnapshot(t *testing.T) {
	c := New(message.NewText("user", role.User, "original"))

	msgs := c.Messages()
	msgs[0] = message.NewText("user", role.User, "modified")
	c.Append(message.NewText("user", role.User, "later"))

	assert.Len(t, msgs, 1)
	assert.Equal(t, "original", c.Messages()[0].TextContent())
}

func TestChat_AllStopsEarly(t *testing.T) {
	c := New(
		message.NewText("user", role.User, "a"),
		message.NewText("user", role.User, "b"),
		message.NewText("user", role.User, "c"),
	)

	var seen []string
	for m := range c.All() {
		seen = append(seen, m.TextContent())
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestChat_SystemPrompt(t *testing.T) {
	c := New(
		message.NewText("studio", role.System, "You create content."),
		message.NewText("user", role.User, "hi"),
	)

	assert.Equal(t, "You create content.", c.SystemPrompt())
	assert.Empty(t, New().SystemPrompt())
}

func TestChat_ToolCallName(t *testing.T) {
	c := New(message.New("studio", role.Assistant,
		content.ToolCall{ID: "c1", Name: "generate_thumbnail"},
		content.ToolCall{ID: "c2", Name: "generate_qr_code"},
	))

	name, ok := c.ToolCallName("c2")
	require.True(t, ok)
	assert.Equal(t, "generate_qr_code", name)

	_, ok = c.ToolCallName("missing")
	assert.False(t, ok)
}

func TestChat_Unanswered(t *testing.T) {
	c := New(message.New("studio", role.Assistant,
		content.ToolCall{ID: "c1", Name: "a"},
		content.ToolCall{ID: "c2", Name: "b"},
	))

	assert.Len(t, c.Unanswered(), 2)

	c.Append(message.New("studio", role.Tool, content.ToolResult{ToolCallID: "c1", Content: "ok"}))

	pending := c.Unanswered()
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].ID)

	c.Append(message.New("studio", role.Tool, content.ToolResult{ToolCallID: "c2", Content: "ok"}))
	assert.Empty(t, c.Unanswered())
}
