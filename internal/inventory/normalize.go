package inventory

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"roomproof/internal/domain"
)

// Normalize coerces any accepted shape of an inventory payload into the
// canonical {items, location} form. Accepted shapes:
//
//   - a bare array of items (legacy payloads)
//   - an object with an "items" array and optional "location" string
//   - either of the above JSON-encoded as a string, possibly wrapped in
//     markdown code fences by a chatty model
//   - already-canonical domain types, passed through unchanged
//
// Anything unrecognized normalizes to an empty list with a warning log, never
// an error. Normalize is pure and idempotent.
func Normalize(raw any) domain.List {
	// Two string-decode levels: a persisted payload can be the canonical
	// object JSON-encoded as text ("the same object JSON-encoded as a
	// string"), which takes one decode to unwrap the string and one to parse
	// it. Deeper nesting is not a recognized shape.
	return normalize(raw, 2)
}

// NormalizeJSON decodes a raw JSON payload (native array, wrapped object, or
// a JSON string containing either) into the canonical shape.
func NormalizeJSON(data []byte) domain.List {
	return Normalize(string(data))
}

func normalize(raw any, decodes int) domain.List {
	switch v := raw.(type) {
	case nil:
		return emptyList()
	case domain.List:
		return domain.List{Items: coerceTyped(v.Items), Location: v.Location}
	case []domain.InventoryItem:
		return domain.List{Items: coerceTyped(v), Location: ""}
	case string:
		if decodes <= 0 {
			slog.Warn("inventory payload has unrecognized shape", "type", "nested string")
			return emptyList()
		}
		return decodeString(v, decodes-1)
	case []byte:
		return normalize(string(v), decodes)
	case json.RawMessage:
		return normalize(string(v), decodes)
	case []any:
		return domain.List{Items: coerceItems(v), Location: ""}
	case map[string]any:
		return normalizeObject(v)
	default:
		slog.Warn("inventory payload has unrecognized shape", "type", typeName(raw))
		return emptyList()
	}
}

func decodeString(s string, decodes int) domain.List {
	trimmed := StripFences(s)
	if trimmed == "" {
		return emptyList()
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		slog.Warn("inventory payload is not valid JSON", "error", err)
		return emptyList()
	}
	return normalize(decoded, decodes)
}

func normalizeObject(m map[string]any) domain.List {
	rawItems, ok := m["items"].([]any)
	if !ok {
		slog.Warn("inventory payload object has no items array")
		return emptyList()
	}

	location := ""
	if loc, ok := m["location"].(string); ok {
		location = loc
	}
	return domain.List{Items: coerceItems(rawItems), Location: location}
}

// coerceItems converts raw decoded elements into items. Malformed elements
// become empty rows rather than being dropped, so row count (and with it the
// positional identity edit screens rely on) is preserved.
func coerceItems(raw []any) []domain.InventoryItem {
	items := make([]domain.InventoryItem, 0, len(raw))
	for _, el := range raw {
		items = append(items, coerceItem(el))
	}
	return items
}

func coerceItem(el any) domain.InventoryItem {
	m, ok := el.(map[string]any)
	if !ok {
		return domain.InventoryItem{}
	}

	item := domain.InventoryItem{}
	if name, ok := m["name"].(string); ok {
		item.Name = name
	}
	if cond, ok := m["condition"].(string); ok {
		item.Condition = cond
	}
	item.Count = coerceCount(m["count"])
	return item
}

// coerceCount accepts the numeric encodings JSON decoding can produce, plus
// numeric strings from hand-edited payloads. Missing or unusable values are 0;
// counts are never negative.
func coerceCount(v any) int {
	n := 0
	switch c := v.(type) {
	case float64:
		n = int(c)
	case int:
		n = c
	case int64:
		n = int(c)
	case json.Number:
		if parsed, err := c.Int64(); err == nil {
			n = int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(c)); err == nil {
			n = parsed
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

func coerceTyped(items []domain.InventoryItem) []domain.InventoryItem {
	out := make([]domain.InventoryItem, len(items))
	for i, item := range items {
		out[i] = item
		if out[i].Count < 0 {
			out[i].Count = 0
		}
	}
	return out
}

// StripFences removes a leading/trailing markdown code fence from a model
// reply, e.g. "```json\n{...}\n```" becomes "{...}". Text without fences is
// returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence line ("json", "JSON", ...).
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], "{[") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func emptyList() domain.List {
	return domain.List{Items: []domain.InventoryItem{}}
}

func typeName(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	default:
		return "unknown"
	}
}
