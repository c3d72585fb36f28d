package aggregate

import (
	"fmt"
	"sort"
	"strings"
)

// ContextField is a passthrough value carried into the record untouched,
// such as a campaign tag or referral code.
type ContextField struct {
	Name  string
	Value string
}

// Context returns a ContextField for an arbitrary name/value pair.
func Context(name string, value any) ContextField {
	return ContextField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// MergeContext returns a copy of base with fields applied. Empty names are
// ignored; later fields win on name collisions.
func MergeContext(base map[string]string, fields ...ContextField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedContext normalises and sorts context fields by name.
func SortedContext(fields map[string]string) []ContextField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]ContextField, 0, len(names))
	for _, name := range names {
		out = append(out, ContextField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return out
}
