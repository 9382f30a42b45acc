package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// nullReprs are string conversions that mean "no value".
var nullReprs = map[string]struct{}{
	"None":  {},
	"null":  {},
	"nil":   {},
	"<nil>": {},
}

var errNoText = errors.New("normalize: block has no text")

// ContentBlocks extracts the text of the first content block. It accepts
// MCP call results, MCP content slices, string-keyed maps of any type with a
// "content" list, and structs exposing a Content slice. The first block must carry text either
// as a Text field or as a "text" key.
func ContentBlocks(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case *mcp.CallToolResult:
		if v == nil {
			return "", false
		}
		return firstBlockText(v.Content)
	case mcp.CallToolResult:
		return firstBlockText(v.Content)
	case []mcp.Content:
		return firstBlockText(v)
	case map[string]any:
		blocks, ok := v["content"]
		if !ok {
			return "", false
		}
		return firstBlockText(blocks)
	}

	rv := indirect(reflect.ValueOf(raw))
	if !rv.IsValid() {
		return "", false
	}

	var field reflect.Value
	switch rv.Kind() {
	case reflect.Map:
		field = mapKey(rv, "content")
	case reflect.Struct:
		field = rv.FieldByName("Content")
	}
	if !field.IsValid() || !field.CanInterface() {
		return "", false
	}

	return firstBlockText(field.Interface())
}

// mapKey looks up key in a map whose key kind is string, including named
// string types. It returns the zero Value when the key is absent.
func mapKey(m reflect.Value, key string) reflect.Value {
	kt := m.Type().Key()
	if kt.Kind() != reflect.String {
		return reflect.Value{}
	}

	return indirect(m.MapIndex(reflect.ValueOf(key).Convert(kt)))
}

// Direct accepts values with a natural string form: strings, byte slices,
// errors, fmt.Stringer implementations, booleans and numbers. Empty results
// and null representations are rejected.
func Direct(raw any) (string, bool) {
	var s string

	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		s = v
	case json.RawMessage:
		s = string(v)
	case []byte:
		s = string(v)
	case error:
		s = v.Error()
	case fmt.Stringer:
		s = v.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		s = fmt.Sprint(v)
	default:
		return "", false
	}

	if s == "" {
		return "", false
	}
	if _, null := nullReprs[s]; null {
		return "", false
	}

	return s, true
}

// JSON serializes the whole value. Only values that cannot be marshaled are
// rejected; a nil result becomes "null".
func JSON(raw any) (string, bool) {
	b, err := json.Marshal(raw)
	if err != nil {
		return "", false
	}

	return string(b), true
}

func firstBlockText(blocks any) (string, bool) {
	switch b := blocks.(type) {
	case nil:
		return "", false
	case []mcp.Content:
		if len(b) == 0 {
			return "", false
		}
		return blockText(b[0])
	case []any:
		if len(b) == 0 {
			return "", false
		}
		return blockText(b[0])
	}

	rv := reflect.ValueOf(blocks)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", false
	}
	if rv.Len() == 0 {
		return "", false
	}

	return blockText(rv.Index(0).Interface())
}

func blockText(block any) (string, bool) {
	text, err := textOf(block)
	if err != nil {
		return "", false
	}

	return text, true
}

func textOf(block any) (string, error) {
	switch b := block.(type) {
	case nil:
		return "", errNoText
	case *mcp.TextContent:
		if b == nil {
			return "", errNoText
		}
		return b.Text, nil
	case map[string]any:
		if text, ok := b["text"].(string); ok {
			return text, nil
		}
		return "", errNoText
	case map[string]string:
		if text, ok := b["text"]; ok {
			return text, nil
		}
		return "", errNoText
	}

	rv := indirect(reflect.ValueOf(block))
	if !rv.IsValid() {
		return "", errNoText
	}

	var field reflect.Value
	switch rv.Kind() {
	case reflect.Map:
		field = mapKey(rv, "text")
	case reflect.Struct:
		field = rv.FieldByName("Text")
	}
	if !field.IsValid() || field.Kind() != reflect.String {
		return "", errNoText
	}

	return field.String(), nil
}

// indirect dereferences pointers and interfaces. It returns the zero Value
// for nil pointers.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
