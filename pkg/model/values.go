package model

import (
	"fmt"
	"strings"
)

// Values maps input names to answers. An answer is a string or, for
// multi-select widgets, a []string.
type Values map[string]any

// String returns the answer as a single string. Lists are joined with ", ".
func (v Values) String(name string) string {
	switch value := v[name].(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, ", ")
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(value)
	}
}

// List returns the answer as a list. Scalars yield one element, blanks none.
func (v Values) List(name string) []string {
	switch value := v[name].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), value...)
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		text := v.String(name)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
}

// Blank reports whether the answer is missing or whitespace only.
func (v Values) Blank(name string) bool {
	for _, item := range v.List(name) {
		if strings.TrimSpace(item) != "" {
			return false
		}
	}
	return true
}

// Clone copies the map and any list answers.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for key, value := range v {
		switch typed := value.(type) {
		case []string:
			out[key] = append([]string(nil), typed...)
		case []any:
			out[key] = append([]any(nil), typed...)
		default:
			out[key] = typed
		}
	}
	return out
}
