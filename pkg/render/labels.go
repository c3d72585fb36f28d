package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-screener/pkg/normalize"
)

var yesSentinels = map[string]struct{}{
	"any_text":  {},
	"any_email": {},
	"any_phone": {},
	"any_valid": {},
}

// FormatLabel turns a raw option value into display text. Wildcard sentinels
// read as "Yes", "none" as "No"; anything else has underscores replaced and
// is title cased.
func FormatLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if _, ok := yesSentinels[trimmed]; ok {
		return "Yes"
	}
	if trimmed == "none" {
		return "No"
	}
	spaced := strings.Join(strings.Fields(strings.ReplaceAll(trimmed, "_", " ")), " ")
	return cases.Title(language.Und).String(spaced)
}

// OptionValue is the submitted value for a raw option.
func OptionValue(raw string) string {
	if value := normalize.Sanitize(raw); value != "" {
		return value
	}
	return strings.TrimSpace(raw)
}

// OptionValues returns the submitted value of every raw option. Options whose
// sanitized values collide keep their trimmed raw text instead.
func OptionValues(raws []string) []string {
	counts := make(map[string]int, len(raws))
	for _, raw := range raws {
		counts[OptionValue(raw)]++
	}
	out := make([]string, len(raws))
	for i, raw := range raws {
		out[i] = OptionValue(raw)
		if counts[out[i]] > 1 {
			out[i] = strings.TrimSpace(raw)
		}
	}
	return out
}
