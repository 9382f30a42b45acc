// Package anthropic provides a Completer implementation for the Anthropic
// Messages API on top of the official anthropic-sdk-go client.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultTemperature is the sampling temperature sent with every request.
	DefaultTemperature = 0.7
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Anthropic Messages API.
// Only the model fields, Usage and rate limit tracking of the embedded
// ModelAdapter are used; HTTP is handled by the SDK.
type Adapter struct {
	modeladapter.ModelAdapter
	client sdk.Client
}

// New creates an Adapter. An empty baseURL uses the SDK default endpoint and
// an empty model uses DefaultModel. SDK retries are disabled.
func New(baseURL, apiKey, model string, httpClient *http.Client) *Adapter {
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	a := &Adapter{client: sdk.NewClient(opts...)}
	a.BaseURL = baseURL
	a.Name = model
	temp := DefaultTemperature
	a.Temperature = &temp
	a.MaxTokens = 4096
	a.HeaderParser = modeladapter.ParseAnthropicRateLimitHeaders

	return a
}

// Complete sends a conversation to the Anthropic Messages API and returns the
// assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error) {
	params := a.buildParams(c, tools)

	var httpResp *http.Response
	resp, err := a.client.Messages.New(ctx, params, option.WithResponseInto(&httpResp))
	if httpResp != nil {
		a.RecordRateLimit(httpResp.Header)
	}
	if err != nil {
		return message.Message{}, fmt.Errorf("anthropic: %w", mapError(err))
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	})

	return parseResponse(resp), nil
}

// mapError turns an HTTP 429 into a modeladapter.RateLimitError and leaves
// everything else untouched.
func mapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		return err
	}

	rl := &modeladapter.RateLimitError{Body: apiErr.Error()}
	if apiErr.Response != nil {
		rl.RetryAfter = modeladapter.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}

	return rl
}

func (a *Adapter) buildParams(c *chat.Chat, tools []toolbox.Tool) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.Name),
		MaxTokens: int64(a.MaxTokens),
		Messages:  buildMessages(c),
	}

	if a.Temperature != nil {
		params.Temperature = sdk.Float(*a.Temperature)
	}

	if sp := c.SystemPrompt(); sp != "" {
		params.System = []sdk.TextBlockParam{{Text: sp}}
	}

	if len(tools) > 0 {
		params.Tools = make([]sdk.ToolUnionParam, len(tools))
		for i, t := range tools {
			params.Tools[i] = toolParam(t)
		}
		params.ToolChoice = sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
	}

	return params
}

// toolParam converts a descriptor's JSON Schema into the SDK's tool shape.
func toolParam(t toolbox.Tool) sdk.ToolUnionParam {
	var schema struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if len(t.InputSchema) > 0 {
		_ = json.Unmarshal(t.InputSchema, &schema)
	}
	if schema.Properties == nil {
		schema.Properties = map[string]any{}
	}

	tp := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{
		Properties: schema.Properties,
		Required:   schema.Required,
	}, t.Name)
	if t.Description != "" {
		tp.OfTool.Description = param.NewOpt(t.Description)
	}

	return tp
}

// turn is a run of blocks that share a role. Anthropic requires strict
// user/assistant alternation, and tool results travel as user blocks, so
// consecutive messages of the same side are merged.
type turn struct {
	assistant bool
	blocks    []sdk.ContentBlockParamUnion
}

func buildMessages(c *chat.Chat) []sdk.MessageParam {
	var turns []turn

	push := func(assistant bool, blocks ...sdk.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(turns); n > 0 && turns[n-1].assistant == assistant {
			turns[n-1].blocks = append(turns[n-1].blocks, blocks...)
			return
		}
		turns = append(turns, turn{assistant: assistant, blocks: blocks})
	}

	for m := range c.All() {
		switch m.Role {
		case role.User:
			if text := m.TextContent(); text != "" {
				push(false, sdk.NewTextBlock(text))
			}
		case role.Assistant:
			push(true, assistantBlocks(m)...)
		case role.Tool:
			for _, tr := range m.ToolResults() {
				push(false, sdk.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
			}
		}
	}

	out := make([]sdk.MessageParam, len(turns))
	for i, t := range turns {
		if t.assistant {
			out[i] = sdk.NewAssistantMessage(t.blocks...)
		} else {
			out[i] = sdk.NewUserMessage(t.blocks...)
		}
	}

	return out
}

func assistantBlocks(m message.Message) []sdk.ContentBlockParamUnion {
	var blocks []sdk.ContentBlockParamUnion
	for _, p := range m.Parts {
		switch v := p.(type) {
		case content.Text:
			if v.Text != "" {
				blocks = append(blocks, sdk.NewTextBlock(v.Text))
			}
		case content.ToolCall:
			input, err := toolbox.ParseArguments(v.Arguments)
			if err != nil {
				input = map[string]any{}
			}
			blocks = append(blocks, sdk.NewToolUseBlock(v.ID, input, v.Name))
		}
	}
	return blocks
}

func parseResponse(resp *sdk.Message) message.Message {
	var parts []content.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				parts = append(parts, content.Text{Text: block.Text})
			}
		case "tool_use":
			tu := block.AsToolUse()
			args := string(tu.Input)
			if args == "" {
				args = "{}"
			}
			parts = append(parts, content.ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: args,
			})
		}
	}

	return message.New("", role.Assistant, parts...)
}
