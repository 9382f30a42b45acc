package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// userAgent identifies the studio to provider APIs.
const userAgent = "creative-content-studio"

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// RateLimitError is returned for HTTP 429. RetryAfter is zero when the
// provider sent no usable Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}

	return "rate limited: " + e.Body
}

// StatusError is returned for any other non-2xx response. The body is kept
// verbatim so callers can match on provider error codes such as
// insufficient_quota or invalid_api_key.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ParseRetryAfter reads a Retry-After value given in seconds or as an HTTP
// date. It returns zero for empty, malformed or past values.
func ParseRetryAfter(val string) time.Duration {
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(val); err == nil {
		return max(time.Until(t), 0)
	}

	return 0
}

// Completer sends a conversation to a language model and returns the
// assistant's reply. tools is the catalog offered for this call; the model
// may answer directly or request calls.
type Completer interface {
	Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error)
}

// UsageReporter is implemented by completers that embed ModelAdapter.
type UsageReporter interface {
	UsageTracker() *usage.Tracker
}

// Auth holds the provider credential. It is sent as a bearer token.
type Auth struct {
	Key string
}

// ModelAdapter holds the state shared by provider implementations. Embed it
// in a provider struct. SDK-backed providers use the model fields, Usage and
// RecordRateLimit; HTTP providers also use PostJSON.
type ModelAdapter struct {
	Name         string                // Model identifier.
	Temperature  *float64              // Sampling temperature; nil leaves the API default.
	MaxTokens    int                   // Maximum tokens in a reply.
	Auth         Auth                  // Credential for PostJSON.
	BaseURL      string                // API base URL without trailing slash.
	Client       *http.Client          // Falls back to a shared client with a long timeout.
	Usage        usage.Tracker         // Token usage across calls.
	HeaderParser RateLimitHeaderParser // Optional; reads rate limit headers from replies.

	rateLimitInfo atomic.Pointer[RateLimitInfo]
	clientOnce    sync.Once
	defaultClient *http.Client
}

// UsageTracker returns the adapter's token usage tracker.
func (a *ModelAdapter) UsageTracker() *usage.Tracker { return &a.Usage }

// LastRateLimitInfo returns the most recently observed rate limit info, or nil.
func (a *ModelAdapter) LastRateLimitInfo() *RateLimitInfo { return a.rateLimitInfo.Load() }

// RecordRateLimit parses h with HeaderParser and keeps the result. It is a
// no-op without a parser or matching headers.
func (a *ModelAdapter) RecordRateLimit(h http.Header) {
	if a.HeaderParser == nil || h == nil {
		return
	}

	if info := a.HeaderParser(h, time.Now()); info != nil {
		a.rateLimitInfo.Store(info)
	}
}

func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		a.defaultClient = &http.Client{Timeout: 10 * time.Minute}
	})

	return a.defaultClient
}

// PostJSON posts payload as JSON to BaseURL+path and decodes a 2xx reply
// into dest. A nil dest discards the body. Rate limit headers of successful
// replies are recorded.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if a.Auth.Key != "" {
		req.Header.Set("Authorization", "Bearer "+a.Auth.Key)
	}

	resp, err := a.httpClient().Do(req) //nolint:gosec // URL comes from BaseURL configuration
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp); err != nil {
		return err
	}

	a.RecordRateLimit(resp.Header)

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// statusError maps a non-2xx response to RateLimitError or StatusError.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(body),
		}
	}

	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
