package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/normalize"
	"github.com/goliatone/go-screener/pkg/render"
	"github.com/goliatone/go-screener/pkg/visibility"
	"github.com/goliatone/go-screener/pkg/widgets"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// SchemaIssue represents a descriptor problem with optional location metadata.
type SchemaIssue struct {
	Section  string `json:"section,omitempty"`
	Field    string `json:"field,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SchemaValidationResult captures lint outcomes. Valid is false only when an
// error-level issue was found; warnings leave the descriptor usable.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// LintOptions configures Lint.
type LintOptions struct {
	Normalizer *normalize.Normalizer
	Registry   *widgets.Registry
}

// Lint normalises root and reports problems a form author should fix:
// normalisation failures, unknown type hints, show conditions that cannot be
// evaluated, and rule values that match no option.
func Lint(root descriptor.Node, opts LintOptions) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalize.New()
	}
	registry := opts.Registry
	if registry == nil {
		registry = widgets.NewRegistry()
	}

	form, err := normalizer.Normalize(root)
	if err != nil {
		result.Valid = false
		result.Issues = []SchemaIssue{issueFromError(err)}
		return result
	}

	renderer := render.New(render.WithResolver(registry))
	rules := visibility.NewRules(visibility.FieldNames(form))

	for _, section := range form.Sections {
		for _, q := range section.Questions {
			warn := func(format string, args ...any) {
				result.Issues = append(result.Issues, SchemaIssue{
					Section:  section.Title,
					Field:    q.FieldName,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf(format, args...),
				})
			}

			if q.TypeHint != "" {
				if _, ok := registry.Hint(q.TypeHint); !ok {
					warn("unknown type hint %q; widget inferred from text", q.TypeHint)
				}
			}
			if err := rules.Check(q.FieldName, q.ShowCondition); err != nil {
				warn("show condition %q: %s", q.ShowCondition, strings.TrimPrefix(err.Error(), "visibility: "))
			}

			field := renderer.Describe(q)
			if field.Kind.SingleChoice() || field.Kind.MultiChoice() {
				for _, value := range unmatchedRules(q, field.Options) {
					warn("rule value %q matches no option", value)
				}
			}
		}
	}
	return result
}

// LintDocument parses doc and lints the resulting tree.
func LintDocument(doc descriptor.Document, opts LintOptions) SchemaValidationResult {
	root, err := doc.Tree()
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return Lint(root, opts)
}

func unmatchedRules(q model.Question, options []model.Option) []string {
	var out []string
	for _, list := range [][]string{q.Rules.Safe, q.Rules.Flag, q.Rules.Disqualify} {
		for _, value := range list {
			if normalize.IsWildcard(value) {
				continue
			}
			if !validChoice(options, value) {
				out = append(out, value)
			}
		}
	}
	return out
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Severity: SeverityError, Message: "unknown error"}
	}
	var schemaErr *normalize.SchemaError
	if errors.As(err, &schemaErr) {
		message := "invalid descriptor"
		if schemaErr.Err != nil {
			message = schemaErr.Err.Error()
		}
		if schemaErr.Detail != "" {
			message += ": " + schemaErr.Detail
		}
		return SchemaIssue{
			Section:  schemaErr.Section,
			Field:    schemaErr.Field,
			Severity: SeverityError,
			Message:  message,
		}
	}

	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "descriptor: ")
	msg = strings.TrimPrefix(msg, "normalize: ")
	return SchemaIssue{Severity: SeverityError, Message: msg}
}
