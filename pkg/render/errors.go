package render

import (
	"slices"
	"strings"

	"github.com/goliatone/go-screener/pkg/model"
)

// ErrorMapping groups validation messages by the field that owns them.
// Messages for keys no field owns land in Form.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors attaches messages keyed by input name to the owning field, so
// height_feet and height_inches failures both land on height.
func MapErrors(fields []model.FieldDescription, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	owners := make(map[string]string, len(fields))
	for _, field := range fields {
		owners[field.Name] = field.Name
		for _, input := range field.Inputs() {
			owners[input] = field.Name
		}
	}

	for key, messages := range payload {
		messages = dedupe(messages)
		if len(messages) == 0 {
			continue
		}
		owner, ok := owners[strings.TrimSpace(key)]
		if !ok || formLevel(key) {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[owner] = dedupe(append(mapping.Fields[owner], messages...))
	}
	slices.Sort(mapping.Form)
	mapping.Form = dedupe(mapping.Form)
	return mapping
}

// dedupe trims messages and drops blanks and repeats, keeping order.
func dedupe(messages []string) []string {
	var out []string
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}

func formLevel(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key == "" || key == "form"
}
