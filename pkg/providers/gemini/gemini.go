// Package gemini provides a Completer implementation for the Google Gemini API
// on top of the google.golang.org/genai client.
package gemini

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/content"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
	"google.golang.org/genai"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTemperature is the sampling temperature sent with every request.
	DefaultTemperature = 0.7

	thoughtSignatureKey = "thoughtSignature"
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Google Gemini API.
type Adapter struct {
	modeladapter.ModelAdapter
	client *genai.Client
}

// New creates an Adapter backed by the Gemini API. An empty baseURL uses the
// SDK default endpoint and an empty model uses DefaultModel.
func New(ctx context.Context, baseURL, apiKey, model string, httpClient *http.Client) (*Adapter, error) {
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	a := &Adapter{client: client}
	a.BaseURL = baseURL
	a.Name = model
	temp := DefaultTemperature
	a.Temperature = &temp
	a.MaxTokens = 8192

	// HeaderParser is not set. The Gemini API does not return rate limit
	// headers.

	return a, nil
}

// Complete sends a conversation to the Gemini API and returns the assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error) {
	contents, err := buildContents(c)
	if err != nil {
		return message.Message{}, err
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.Name, contents, a.buildConfig(c, tools))
	if err != nil {
		return message.Message{}, fmt.Errorf("gemini: %w", err)
	}

	if resp.UsageMetadata != nil {
		a.Usage.Add(usage.TokenCount{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		})
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return message.Message{}, fmt.Errorf("gemini: empty candidates in response")
	}

	return parseCandidate(resp.Candidates[0]), nil
}

func (a *Adapter) buildConfig(c *chat.Chat, tools []toolbox.Tool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(a.MaxTokens), //nolint:gosec // configured value, far below int32 range
	}

	if a.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*a.Temperature))
	}

	if sp := c.SystemPrompt(); sp != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(sp)}}
	}

	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(tools))
		for i, t := range tools {
			schema := t.InputSchema
			if len(schema) == 0 {
				schema = json.RawMessage(`{"type":"object"}`)
			}
			decls[i] = &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: sanitizeSchema(schema),
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	}

	return cfg
}

// buildContents converts the conversation, skipping the system prompt which
// travels as SystemInstruction. Consecutive parts of the same role are merged
// because Gemini requires alternation.
func buildContents(c *chat.Chat) ([]*genai.Content, error) {
	var contents []*genai.Content

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}

		apiRole := mapRole(m.Role)
		for _, p := range m.Parts {
			part, err := toPart(c, p)
			if err != nil {
				return nil, err
			}
			if part == nil {
				continue
			}

			if n := len(contents); n > 0 && contents[n-1].Role == apiRole {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: apiRole, Parts: []*genai.Part{part}})
		}
	}

	return contents, nil
}

func toPart(c *chat.Chat, p content.Part) (*genai.Part, error) {
	switch v := p.(type) {
	case content.Text:
		if v.Text == "" {
			return nil, nil
		}
		return genai.NewPartFromText(v.Text), nil

	case content.ToolCall:
		args, err := toolbox.ParseArguments(v.Arguments)
		if err != nil {
			args = map[string]any{}
		}
		part := &genai.Part{FunctionCall: &genai.FunctionCall{ID: v.ID, Name: v.Name, Args: args}}
		if sig := v.Metadata[thoughtSignatureKey]; sig != "" {
			if b, err := base64.StdEncoding.DecodeString(sig); err == nil {
				part.ThoughtSignature = b
			}
		}
		return part, nil

	case content.ToolResult:
		name := v.Name
		if name == "" {
			name, _ = c.ToolCallName(v.ToolCallID)
		}
		if name == "" {
			return nil, fmt.Errorf("gemini: no function name found for tool call ID %q", v.ToolCallID)
		}
		return &genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       v.ToolCallID,
			Name:     name,
			Response: functionResponse(v.Content),
		}}, nil

	default:
		return nil, nil
	}
}

// functionResponse wraps tool output as {"result": <value>}. Content that is
// valid JSON is embedded as a value, anything else as a string.
func functionResponse(s string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return map[string]any{"result": v}
	}
	return map[string]any{"result": s}
}

// sanitizeSchema removes JSON Schema keywords that the Gemini API does not
// support (e.g. $schema, additionalProperties). It operates recursively so
// nested schemas (inside "properties", "items") are also cleaned.
func sanitizeSchema(raw json.RawMessage) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return map[string]any{"type": "object"}
	}
	sanitizeNode(obj)
	return obj
}

func sanitizeNode(obj map[string]any) {
	delete(obj, "$schema")
	delete(obj, "additionalProperties")

	if props, ok := obj["properties"].(map[string]any); ok {
		for _, v := range props {
			if child, ok := v.(map[string]any); ok {
				sanitizeNode(child)
			}
		}
	}
	if items, ok := obj["items"].(map[string]any); ok {
		sanitizeNode(items)
	}
}

func mapRole(r role.Role) string {
	if r == role.Assistant {
		return "model"
	}
	return "user"
}

// generateCallID creates a unique tool call ID using random bytes. Gemini
// only sometimes returns call IDs, so missing ones are synthesized.
func generateCallID(name string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("call_%s_%s", name, hex.EncodeToString(b))
}

func parseCandidate(cand *genai.Candidate) message.Message {
	var parts []content.Part

	for _, p := range cand.Content.Parts {
		switch {
		case p.FunctionCall != nil:
			fc := p.FunctionCall
			id := fc.ID
			if id == "" {
				id = generateCallID(fc.Name)
			}

			args := "{}"
			if len(fc.Args) > 0 {
				if b, err := json.Marshal(fc.Args); err == nil {
					args = string(b)
				}
			}

			tc := content.ToolCall{ID: id, Name: fc.Name, Arguments: args}
			if len(p.ThoughtSignature) > 0 {
				tc.Metadata = map[string]string{
					thoughtSignatureKey: base64.StdEncoding.EncodeToString(p.ThoughtSignature),
				}
			}
			parts = append(parts, tc)

		case p.Text != "" && !p.Thought:
			parts = append(parts, content.Text{Text: p.Text})
		}
	}

	return message.New("", role.Assistant, parts...)
}
