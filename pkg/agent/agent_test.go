package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- test helpers ---

// sequenceCompleter returns a sequence of preconfigured replies and records
// the conversation it was sent on every call.
type sequenceCompleter struct {
	replies []message.Message
	index   int
	seen    [][]message.Message
	tools   [][]toolbox.Tool
}

func (p *sequenceCompleter) Complete(_ context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error) {
	p.seen = append(p.seen, c.Messages())
	p.tools = append(p.tools, tools)

	if p.index >= len(p.replies) {
		return message.Message{}, errors.New("no more replies")
	}
	reply := p.replies[p.index]
	p.index++
	return reply, nil
}

// loopingCompleter always asks for the same tool.
type loopingCompleter struct {
	calls int
}

func (p *loopingCompleter) Complete(_ context.Context, _ *chat.Chat, _ []toolbox.Tool) (message.Message, error) {
	p.calls++
	return message.New("", role.Assistant, content.ToolCall{ID: "loop", Name: "noop", Arguments: `{}`}), nil
}

// errorCompleter always returns an error.
type errorCompleter struct {
	err   error
	calls int
}

func (p *errorCompleter) Complete(_ context.Context, _ *chat.Chat, _ []toolbox.Tool) (message.Message, error) {
	p.calls++
	return message.Message{}, p.err
}

type invocation struct {
	name string
	args map[string]any
}

// newRecordingToolBox registers echo and noop tools that record every call.
func newRecordingToolBox(log *[]invocation) *toolbox.ToolBox {
	record := func(name string) toolbox.Handler {
		return func(_ context.Context, args map[string]any) (any, error) {
			*log = append(*log, invocation{name: name, args: args})
			return args, nil
		}
	}

	tb := toolbox.New()
	for _, name := range []string{"echo", "noop", "a", "b", "c"} {
		tb.Register(toolbox.Tool{
			Name:        name,
			Description: "Records its input",
			InputSchema: json.RawMessage(`{"type":"object"}`),
			Handler:     record(name),
		})
	}
	return tb
}

func toolMessages(msgs []message.Message) []content.ToolResult {
	var out []content.ToolResult
	for _, m := range msgs {
		if m.Role == role.Tool {
			out = append(out, m.ToolResults()...)
		}
	}
	return out
}

func decodePayload(t *testing.T, s string) map[string]any {
	t.Helper()

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &got))
	return got
}

// --- constructor ---

func TestNew_Defaults(t *testing.T) {
	a := New(&sequenceCompleter{}, toolbox.New(), Options{})

	assert.Equal(t, "studio", a.Name())
	assert.Equal(t, DefaultMaxIterations, a.MaxIterations())
	assert.Empty(t, a.Tools())
}

func TestNew_ToolsComeFromRegistry(t *testing.T) {
	var calls []invocation
	a := New(&sequenceCompleter{}, newRecordingToolBox(&calls), Options{})

	assert.Len(t, a.Tools(), 5)
}

// --- loop ---

func TestRun_AnswerInOneRoundTrip(t *testing.T) {
	p := &sequenceCompleter{replies: []message.Message{
		message.NewText("", role.Assistant, "Here is your thumbnail."),
	}}
	a := New(p, toolbox.New(), Options{})

	res := a.Run(context.Background(), "make a thumbnail")

	assert.Equal(t, "Here is your thumbnail.", res.Text)
	assert.Equal(t, StatusAnswered, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.NoError(t, res.Err)
	assert.Len(t, p.seen, 1)
}

func TestRun_SendsUserQueryAndCatalog(t *testing.T) {
	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{message.NewText("", role.Assistant, "ok")}}
	a := New(p, newRecordingToolBox(&calls), Options{Instructions: "You create content."})

	a.Run(context.Background(), "hello")

	require.Len(t, p.seen, 1)
	sent := p.seen[0]
	require.Len(t, sent, 2)
	assert.Equal(t, role.System, sent[0].Role)
	assert.Equal(t, "You create content.", sent[0].TextContent())
	assert.Equal(t, role.User, sent[1].Role)
	assert.Equal(t, "hello", sent[1].TextContent())
	assert.Len(t, p.tools[0], 5)
}

func TestRun_ToolCallThenAnswer(t *testing.T) {
	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant,
			content.Text{Text: "Calling tool."},
			content.ToolCall{ID: "c1", Name: "echo", Arguments: `{"msg":"hi"}`},
		),
		message.NewText("", role.Assistant, "Got the result."),
	}}
	a := New(p, newRecordingToolBox(&calls), Options{Name: "bot"})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, "Got the result.", res.Text)
	assert.Equal(t, 2, res.Iterations)
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"msg": "hi"}, calls[0].args)

	second := p.seen[1]
	require.Len(t, second, 3)

	assistant := second[1]
	assert.Equal(t, role.Assistant, assistant.Role)
	assert.Equal(t, "bot", assistant.Sender)
	assert.Equal(t, "Calling tool.", assistant.TextContent())

	results := toolMessages(second)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ToolCallID)
	assert.Equal(t, "echo", results[0].Name)
	assert.JSONEq(t, `{"msg":"hi"}`, results[0].Content)
}

func TestRun_DebugLogsConversationSize(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant,
			content.ToolCall{ID: "c1", Name: "echo", Arguments: `{"msg":"a"}`},
			content.ToolCall{ID: "c2", Name: "echo", Arguments: `{"msg":"b"}`},
		),
		message.NewText("", role.Assistant, "done"),
	}}
	a := New(p, newRecordingToolBox(&calls), Options{Name: "bot", Logger: logger})

	res := a.Run(context.Background(), "go")

	require.Equal(t, StatusAnswered, res.Status)
	out := buf.String()
	assert.Contains(t, out, "iteration=1 budget=10 messages=1")
	assert.Contains(t, out, "iteration=2 budget=10 messages=4")
	assert.NotContains(t, out, "tool call has no result")
}

func TestRun_ToolResultsKeepCallOrder(t *testing.T) {
	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant,
			content.ToolCall{ID: "id-c", Name: "c", Arguments: `{}`},
			content.ToolCall{ID: "id-a", Name: "a", Arguments: `{}`},
			content.ToolCall{ID: "id-b", Name: "b", Arguments: `{}`},
		),
		message.NewText("", role.Assistant, "done"),
	}}
	a := New(p, newRecordingToolBox(&calls), Options{})

	a.Run(context.Background(), "go")

	require.Len(t, calls, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{calls[0].name, calls[1].name, calls[2].name})

	results := toolMessages(p.seen[1])
	require.Len(t, results, 3)
	assert.Equal(t, []string{"id-c", "id-a", "id-b"},
		[]string{results[0].ToolCallID, results[1].ToolCallID, results[2].ToolCallID})

	assert.Empty(t, chat.New(p.seen[1]...).Unanswered())
}

func TestRun_MalformedArgumentsProceedWithEmptyMapping(t *testing.T) {
	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant, content.ToolCall{ID: "c1", Name: "echo", Arguments: `{"msg": oops`}),
		message.NewText("", role.Assistant, "recovered"),
	}}
	a := New(p, newRecordingToolBox(&calls), Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, "recovered", res.Text)
	require.Len(t, calls, 1)
	assert.NotNil(t, calls[0].args)
	assert.Empty(t, calls[0].args)
}

func TestRun_UnknownToolFedBackAsErrorPayload(t *testing.T) {
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant, content.ToolCall{ID: "c1", Name: "make_video_magic", Arguments: `{}`}),
		message.NewText("", role.Assistant, "That tool does not exist."),
	}}
	a := New(p, toolbox.New(), Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, StatusAnswered, res.Status)

	results := toolMessages(p.seen[1])
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)

	payload := decodePayload(t, results[0].Content)
	assert.Equal(t, "error", payload["status"])
	assert.Contains(t, payload["message"], "make_video_magic")
}

func TestRun_ToolErrorFedBack(t *testing.T) {
	tb := toolbox.New()
	tb.Register(toolbox.Tool{
		Name: "create_video_montage",
		Handler: func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("ffmpeg not found")
		},
	})
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant, content.ToolCall{ID: "c1", Name: "create_video_montage", Arguments: `{}`}),
		message.NewText("", role.Assistant, "Install ffmpeg."),
	}}
	a := New(p, tb, Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, "Install ffmpeg.", res.Text)
	payload := decodePayload(t, toolMessages(p.seen[1])[0].Content)
	assert.Equal(t, "Tool execution failed: ffmpeg not found", payload["message"])
}

func TestRun_NoResponse(t *testing.T) {
	p := &sequenceCompleter{replies: []message.Message{message.New("", role.Assistant)}}
	a := New(p, toolbox.New(), Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, NoResponseText, res.Text)
	assert.Equal(t, StatusNoResponse, res.Status)
	assert.Equal(t, 1, res.Iterations)
}

func TestRun_FreshConversationPerQuery(t *testing.T) {
	p := &sequenceCompleter{replies: []message.Message{
		message.NewText("", role.Assistant, "first"),
		message.NewText("", role.Assistant, "second"),
	}}
	a := New(p, toolbox.New(), Options{})

	assert.Equal(t, "first", a.Run(context.Background(), "one").Text)
	assert.Equal(t, "second", a.Run(context.Background(), "two").Text)

	require.Len(t, p.seen, 2)
	require.Len(t, p.seen[1], 1)
	assert.Equal(t, "two", p.seen[1][0].TextContent())
}

// --- budget ---

func TestProcessQuery_BudgetExhausted(t *testing.T) {
	var calls []invocation
	for _, budget := range []int{1, 3, 7} {
		p := &loopingCompleter{}
		a := New(p, newRecordingToolBox(&calls), Options{})

		text := a.ProcessQuery(context.Background(), "loop forever", budget)

		assert.Equal(t, MaxIterationsText, text)
		assert.Equal(t, budget, p.calls)
	}
}

func TestProcessQuery_NonPositiveBudgetUsesDefault(t *testing.T) {
	var calls []invocation
	for _, budget := range []int{0, -2} {
		p := &loopingCompleter{}
		a := New(p, newRecordingToolBox(&calls), Options{MaxIterations: 4})

		text := a.ProcessQuery(context.Background(), "loop", budget)

		assert.Equal(t, MaxIterationsText, text)
		assert.Equal(t, 4, p.calls)
	}
}

func TestQuery_ReportsStatusAndIterations(t *testing.T) {
	var calls []invocation
	p := &loopingCompleter{}
	a := New(p, newRecordingToolBox(&calls), Options{})

	res := a.Query(context.Background(), "loop", 2)

	assert.Equal(t, StatusMaxIterations, res.Status)
	assert.Equal(t, MaxIterationsText, res.Text)
	assert.Equal(t, 2, res.Iterations)
	assert.NoError(t, res.Err)
}

func TestRun_DefaultBudgetIsTen(t *testing.T) {
	var calls []invocation
	p := &loopingCompleter{}
	a := New(p, newRecordingToolBox(&calls), Options{})

	res := a.Run(context.Background(), "loop")

	assert.Equal(t, StatusMaxIterations, res.Status)
	assert.Equal(t, 10, res.Iterations)
	assert.Equal(t, 10, p.calls)
	assert.Len(t, calls, 10)
}

// --- transport errors ---

func TestProcessQuery_QuotaOnFirstIteration(t *testing.T) {
	p := &errorCompleter{err: errors.New(`openai: rate limited: {"error":{"code":"insufficient_quota"}}`)}
	a := New(p, toolbox.New(), Options{})

	text := a.ProcessQuery(context.Background(), "go", 5)

	assert.Equal(t, QuotaText, text)
	assert.Equal(t, 1, p.calls)
}

func TestRun_TransportErrorResult(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	p := &errorCompleter{err: err}
	a := New(p, toolbox.New(), Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, StatusTransportError, res.Status)
	assert.Equal(t, "ERROR: Error: dial tcp: connection refused", res.Text)
	assert.ErrorIs(t, res.Err, err)
	assert.Equal(t, 1, res.Iterations)
}

func TestRun_TransportErrorAfterToolRound(t *testing.T) {
	var calls []invocation
	p := &sequenceCompleter{replies: []message.Message{
		message.New("", role.Assistant, content.ToolCall{ID: "c1", Name: "noop", Arguments: `{}`}),
	}}
	a := New(p, newRecordingToolBox(&calls), Options{})

	res := a.Run(context.Background(), "go")

	assert.Equal(t, StatusTransportError, res.Status)
	assert.Equal(t, "ERROR: Error: no more replies", res.Text)
	assert.Equal(t, 2, res.Iterations)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "answered", StatusAnswered.String())
	assert.Equal(t, "no_response", StatusNoResponse.String())
	assert.Equal(t, "max_iterations", StatusMaxIterations.String())
	assert.Equal(t, "transport_error", StatusTransportError.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(99).String())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := make([]rune, previewLen+10)
	for i := range long {
		long[i] = 'é'
	}
	got := preview(string(long))
	assert.Len(t, []rune(got), previewLen+3)
}
