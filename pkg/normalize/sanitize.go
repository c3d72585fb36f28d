package normalize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize lowercases value, collapses every run of non-alphanumeric
// characters into one underscore and trims leading and trailing underscores.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(value string) string {
	lowered := strings.ToLower(value)
	return strings.Trim(nonAlphanumeric.ReplaceAllString(lowered, "_"), "_")
}

// Humanize renders a descriptor key as a display title: "health_history"
// becomes "Health History". Existing capitals are kept.
func Humanize(key string) string {
	spaced := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key)), " ")
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}

// plainText strips markup from descriptor text and collapses whitespace.
func plainText(raw string) string {
	cleaned := html.UnescapeString(textSanitizer().Sanitize(raw))
	return strings.Join(strings.Fields(cleaned), " ")
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
