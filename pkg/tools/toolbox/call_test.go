package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, s string) map[string]any {
	t.Helper()

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &got))
	return got
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments(`{"text":"hello","width":640}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", args["text"])
	assert.InDelta(t, 640, args["width"], 0)
}

func TestParseArguments_BlankAndNull(t *testing.T) {
	for _, raw := range []string{"", "   ", "null"} {
		args, err := ParseArguments(raw)
		require.NoError(t, err, raw)
		assert.NotNil(t, args)
		assert.Empty(t, args)
	}
}

func TestParseArguments_Malformed(t *testing.T) {
	for _, raw := range []string{"{not json", "[1,2]", `"text"`} {
		args, err := ParseArguments(raw)
		require.Error(t, err, raw)
		assert.NotNil(t, args)
		assert.Empty(t, args)
	}
}

func TestCall_Success(t *testing.T) {
	tb := New()
	tb.Register(newEchoTool("echo"))

	result := Call(context.Background(), tb, content.ToolCall{
		ID:        "call-1",
		Name:      "echo",
		Arguments: `{"msg":"hi"}`,
	}, nil)

	assert.Equal(t, "call-1", result.ToolCallID)
	assert.Equal(t, "echo", result.Name)
	assert.JSONEq(t, `{"msg":"hi"}`, result.Content)
	assert.False(t, result.IsError)
}

func TestCall_MalformedArgumentsProceedWithEmptyMapping(t *testing.T) {
	var received map[string]any
	tb := New()
	tb.Register(Tool{
		Name: "record",
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			received = args
			return "recorded", nil
		},
	})

	result := Call(context.Background(), tb, content.ToolCall{
		ID:        "call-2",
		Name:      "record",
		Arguments: "{broken",
	}, nil)

	assert.False(t, result.IsError)
	assert.Equal(t, "recorded", result.Content)
	assert.NotNil(t, received)
	assert.Empty(t, received)
}

func TestCall_UnknownTool(t *testing.T) {
	result := Call(context.Background(), New(), content.ToolCall{ID: "call-3", Name: "missing"}, nil)

	assert.Equal(t, "call-3", result.ToolCallID)
	assert.True(t, result.IsError)

	payload := decodePayload(t, result.Content)
	assert.Equal(t, "error", payload["status"])
	assert.Equal(t, "Unknown tool: missing", payload["message"])
}

func TestCall_HandlerError(t *testing.T) {
	tb := New()
	tb.Register(Tool{Name: "fail", Handler: errorHandler})

	result := Call(context.Background(), tb, content.ToolCall{ID: "call-4", Name: "fail"}, nil)

	assert.True(t, result.IsError)
	payload := decodePayload(t, result.Content)
	assert.Equal(t, "error", payload["status"])
	assert.Equal(t, "Tool execution failed: tool failed", payload["message"])
}

type stubRegistry struct {
	err error
}

func (s stubRegistry) Tools() []Tool { return nil }

func (s stubRegistry) Invoke(context.Context, string, map[string]any) (any, error) {
	return nil, s.err
}

func TestCall_TransportErrorBecomesPayload(t *testing.T) {
	reg := stubRegistry{err: errors.New("mcpclient: call tool: connection closed")}

	result := Call(context.Background(), reg, content.ToolCall{ID: "call-5", Name: "remote"}, nil)

	assert.True(t, result.IsError)
	payload := decodePayload(t, result.Content)
	assert.Contains(t, payload["message"], "connection closed")
}

func TestCall_UnnormalizableResult(t *testing.T) {
	tb := New()
	tb.Register(Tool{
		Name: "odd",
		Handler: func(context.Context, map[string]any) (any, error) {
			return make(chan struct{}), nil
		},
	})

	result := Call(context.Background(), tb, content.ToolCall{ID: "call-6", Name: "odd"}, nil)

	payload := decodePayload(t, result.Content)
	assert.Equal(t, "error", payload["status"])
	assert.Contains(t, payload["message"], "chan struct {}")
}
