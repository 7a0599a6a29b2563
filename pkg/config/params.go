package config

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// parametersPrefix namespaces model parameter keys in get/set.
const parametersPrefix = "parameters."

// ParseParam splits a key=value model parameter. The value is decoded as JSON
// when it is valid JSON (numbers, booleans, objects, arrays, quoted strings)
// and kept as a plain string otherwise.
func ParseParam(kv string) (string, any, error) {
	key, raw, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid parameter %q: expected key=value", kv)
	}

	return key, ParseParamValue(raw), nil
}

// ParseParamValue decodes raw as JSON, falling back to the raw string.
// Integral numbers become int64 so they round-trip through config.toml as
// TOML integers; other numbers become float64.
func ParseParamValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw
	}
	return normalizeNumbers(v)
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
	}
	return v
}

// formatParamValue renders a parameter value the way ParseParamValue reads it.
func formatParamValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// parameterKey returns the parameter name in a "parameters.<name>" key.
// The name may be dotted but every segment must be non-empty.
func parameterKey(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, parametersPrefix)
	if !ok || slices.Contains(strings.Split(name, "."), "") {
		return "", false
	}
	return name, true
}

// LookupParam returns the value SetParam stored under the dotted key.
func LookupParam(params map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := params[part].(map[string]any)
		if !ok {
			return nil, false
		}
		params = next
	}
	v, ok := params[parts[len(parts)-1]]
	return v, ok
}

// SetParam stores value under key in params. Dotted keys address nested
// tables, so "parameters.max_new_tokens" sets
// params["parameters"]["max_new_tokens"], creating or replacing intermediate
// tables as needed. Nested tables are copied before they are modified.
func SetParam(params map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := params[part].(map[string]any)
		if ok {
			next = maps.Clone(next)
		} else {
			next = map[string]any{}
		}
		params[part] = next
		params = next
	}
	params[parts[len(parts)-1]] = value
}
