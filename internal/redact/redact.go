// Package redact strips sensitive values from tool arguments and
// results before they enter telemetry.
package redact

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Marker replaces values whose key looks sensitive.
const Marker = "***REDACTED***"

// MaxStringLen is the truncation threshold for string values.
const MaxStringLen = 1000

const truncationSuffix = "... (truncated)"

// sensitiveKeys are matched as case-insensitive substrings of map keys.
var sensitiveKeys = []string{"password", "token", "api_key", "apikey", "secret", "key"}

// Value redacts a single value, recursing into maps and slices.
// Concretely typed containers (structs, map[string]string and friends)
// are normalized through their JSON form first, so a sensitive field
// is masked no matter how the caller typed the enclosing value.
// Scalars other than strings pass through unchanged.
func Value(v any) any {
	switch val := v.(type) {
	case string:
		return truncate(val)
	case map[string]any:
		return Map(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	default:
		if norm, ok := normalize(v); ok {
			return Value(norm)
		}
		return v
	}
}

// Map returns a redacted copy of m: values under sensitive keys become
// the redaction marker, everything else is redacted recursively.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if SensitiveKey(k) {
			out[k] = Marker
			continue
		}
		out[k] = Value(v)
	}
	return out
}

// SensitiveKey reports whether the key contains a sensitive substring.
func SensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// normalize converts a concretely typed container into the generic
// JSON form (map[string]any, []any, scalars) so redaction can recurse
// into it. Non-container values and values that cannot round-trip
// through JSON are reported as not normalizable.
func normalize(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
	default:
		return nil, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func truncate(s string) string {
	if len(s) > MaxStringLen {
		return s[:MaxStringLen] + truncationSuffix
	}
	return s
}
