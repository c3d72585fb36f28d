// Package visibility decides whether a question is shown given the answers
// captured so far. Hidden questions are skipped by validation, classification
// and the submission record.
package visibility

import (
	"strings"

	"github.com/goliatone/go-screener/pkg/model"
)

// Evaluator determines whether a field should be visible based on a rule
// string and the captured answers.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the answers captured
// on the step being shown, Prior the answers committed on earlier steps, and
// Extras passthrough context such as the respondent's state. Only Values is
// ever validated.
type Context struct {
	Values model.Values
	Prior  model.Values
	Extras map[string]any
}

// Answers returns the values for name, preferring the current step over
// earlier ones.
func (c Context) Answers(name string) []string {
	if _, ok := c.Values[name]; ok || c.Prior == nil {
		return c.Values.List(name)
	}
	return c.Prior.List(name)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Always is the rule value for unconditional questions.
const Always = "always"

// Visible evaluates field's show condition. Empty and "always" rules are
// visible without consulting the evaluator; evaluation errors leave the field
// visible and are returned for logging.
func Visible(ev Evaluator, field model.FieldDescription, ctx Context) (bool, error) {
	rule := strings.TrimSpace(field.ShowCondition)
	if rule == "" || strings.EqualFold(rule, Always) || ev == nil {
		return true, nil
	}
	ok, err := ev.Eval(field.Name, rule, ctx)
	if err != nil {
		return true, err
	}
	return ok, nil
}
