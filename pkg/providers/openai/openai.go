// Package openai provides a Completer for the OpenAI Chat Completions API and
// compatible servers.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

const (
	completionsPath = "/v1/chat/completions"

	// DefaultBaseURL is the public OpenAI endpoint.
	DefaultBaseURL = "https://api.openai.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature is the sampling temperature sent with every request.
	DefaultTemperature = 0.7
	// DefaultMaxTokens caps each reply.
	DefaultMaxTokens = 4096
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer over plain HTTP.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter. Empty baseURL and model fall back to
// DefaultBaseURL and DefaultModel.
func New(baseURL, apiKey, model string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	a := &Adapter{}
	a.BaseURL = strings.TrimSuffix(baseURL, "/")
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model
	temp := DefaultTemperature
	a.Temperature = &temp
	a.MaxTokens = DefaultMaxTokens
	a.HeaderParser = modeladapter.ParseOpenAIRateLimitHeaders

	return a
}

// Complete sends the conversation with the tool catalog and returns the
// assistant's reply. The model picks between answering and calling tools.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error) {
	req := completionRequest{
		Model:     a.Name,
		Messages:  toWire(c.Messages()),
		MaxTokens: a.MaxTokens,
		Tools:     toolDefs(tools),
	}
	if a.Temperature != nil {
		t := *a.Temperature
		req.Temperature = &t
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	var resp completionResponse
	if err := a.PostJSON(ctx, completionsPath, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", err)
	}

	// Some compatible servers report failures in a 200 body.
	if resp.Error != nil {
		return message.Message{}, fmt.Errorf("openai: %s", resp.Error)
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	if len(resp.Choices) == 0 {
		return message.Message{}, fmt.Errorf("openai: response has no choices")
	}

	return fromWire(resp.Choices[0].Message), nil
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Tools       []toolDef     `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

// apiError is the error object OpenAI-style servers return.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (e *apiError) String() string {
	if e.Code == "" {
		return e.Message
	}

	return e.Message + " (" + e.Code + ")"
}

// wireMessage is used for both directions. Content is a pointer because
// assistant messages with tool calls may carry null content.
type wireMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []wireCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type wireCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type toolDef struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

func toolDefs(tools []toolbox.Tool) []toolDef {
	if len(tools) == 0 {
		return nil
	}

	defs := make([]toolDef, len(tools))
	for i, t := range tools {
		defs[i].Type = "function"
		defs[i].Function.Name = t.Name
		defs[i].Function.Description = t.Description
		defs[i].Function.Parameters = t.InputSchema
		if len(t.InputSchema) == 0 {
			defs[i].Function.Parameters = json.RawMessage(`{"type":"object"}`)
		}
	}

	return defs
}

// toWire flattens the conversation. Each tool result becomes its own "tool"
// message as the API requires.
func toWire(msgs []message.Message) []wireMessage {
	var out []wireMessage

	for _, m := range msgs {
		switch m.Role {
		case role.System, role.User:
			out = append(out, textMessage(m.Role.String(), m.TextContent()))
		case role.Assistant:
			out = append(out, assistantMessage(m))
		case role.Tool:
			for _, tr := range m.ToolResults() {
				msg := textMessage("tool", tr.Content)
				msg.ToolCallID = tr.ToolCallID
				msg.Name = tr.Name
				out = append(out, msg)
			}
		}
	}

	return out
}

func textMessage(r, text string) wireMessage {
	return wireMessage{Role: r, Content: &text}
}

func assistantMessage(m message.Message) wireMessage {
	msg := wireMessage{Role: "assistant"}

	if text := m.TextContent(); text != "" {
		msg.Content = &text
	}

	for _, tc := range m.ToolCalls() {
		var call wireCall
		call.ID = tc.ID
		call.Type = "function"
		call.Function.Name = tc.Name
		call.Function.Arguments = tc.Arguments
		msg.ToolCalls = append(msg.ToolCalls, call)
	}

	return msg
}

func fromWire(m wireMessage) message.Message {
	var parts []content.Part

	if m.Content != nil && *m.Content != "" {
		parts = append(parts, content.Text{Text: *m.Content})
	}

	for _, tc := range m.ToolCalls {
		parts = append(parts, content.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return message.New("", role.Assistant, parts...)
}
