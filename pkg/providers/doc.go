// Package providers groups the concrete [modeladapter.Completer]
// implementations.
//
// It is organized into sub-packages:
//   - openai: Chat Completions over the shared modeladapter HTTP helpers
//   - anthropic: Messages API via github.com/anthropics/anthropic-sdk-go
//   - gemini: GenerateContent via google.golang.org/genai
//
// Every adapter requests automatic tool choice, sends a default temperature
// of 0.7, records token usage on the embedded ModelAdapter, and performs no
// retries of its own.
//
// [modeladapter.Completer]: https://pkg.go.dev/github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter#Completer
package providers
