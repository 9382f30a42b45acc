// Package normalize reduces a tool's raw return value to the single string
// payload a tool-result message carries.
//
// Tools return results in many shapes: MCP content-block results, plain
// mappings, bare strings, or arbitrary Go values. Normalize tries an
// ordered list of strategies and takes the first one that succeeds. Every
// strategy is total: it reports failure instead of panicking, and a panic
// inside a strategy is treated as failure. When no strategy succeeds the
// result is an error payload naming the observed type, so Normalize always
// returns a string.
package normalize

import (
	"encoding/json"
	"fmt"
)

// Strategy extracts a string from a raw tool result. The bool reports
// whether the strategy produced a usable payload.
type Strategy func(raw any) (string, bool)

// DefaultStrategies is the extraction order used by Normalize.
var DefaultStrategies = []Strategy{ContentBlocks, Direct, JSON}

// normalizeWith returns the payload of the first successful strategy, or an
// error payload if none succeeds.
func normalizeWith(strategies []Strategy, raw any) string {
	for _, s := range strategies {
		if out, ok := try(s, raw); ok {
			return out
		}
	}

	return ErrorPayload(fmt.Sprintf("Could not extract result from tool response. Type: %T", raw))
}

// Normalize reduces raw to a string using DefaultStrategies.
func Normalize(raw any) string {
	return normalizeWith(DefaultStrategies, raw)
}

// ErrorPayload builds the {"status":"error","message":...} JSON document fed
// back to the model when a tool fails.
func ErrorPayload(msg string) string {
	b, _ := json.Marshal(errorPayload{Status: "error", Message: msg})
	return string(b)
}

type errorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func try(s Strategy, raw any) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = "", false
		}
	}()

	return s(raw)
}
