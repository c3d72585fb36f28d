package visibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/normalize"
)

const shorthandPrefix = "if_"

var (
	// ErrMalformedRule is returned for rules that cannot be parsed.
	ErrMalformedRule = errors.New("visibility: malformed rule")
	// ErrUnknownSubject is reported by Check for shorthand rules naming no
	// field.
	ErrUnknownSubject = errors.New("visibility: rule subject matches no field")
)

// Rules evaluates the show conditions found in screening descriptors:
//
//   - "always"
//   - shorthand "if_<subject>_<value>", e.g. if_gender_female or
//     if_other_glp1s_yes; the subject names a field exactly or is contained
//     in one
//   - comparisons "field == value" / "field != value" joined by "&&" and "||"
//     ("&&" binds tighter); a bare field name checks that it was answered
//
// Answer comparisons ignore case and punctuation and match any element of a
// multi-select answer. "extras.<key>" reads passthrough context.
type Rules struct {
	fields []string
}

// NewRules returns an evaluator resolving shorthand subjects against fields,
// in declaration order.
func NewRules(fields []string) *Rules {
	return &Rules{fields: append([]string(nil), fields...)}
}

// FieldNames lists the field names of a form in declaration order.
func FieldNames(form model.FormModel) []string {
	var out []string
	for _, q := range form.Questions() {
		out = append(out, q.FieldName)
	}
	return out
}

// Eval implements Evaluator.
func (r *Rules) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" || strings.EqualFold(trimmed, Always) {
		return true, nil
	}
	if err := wellFormed(trimmed); err != nil {
		return false, err
	}
	for _, disjunct := range strings.Split(trimmed, "||") {
		ok, err := r.all(fieldPath, disjunct, ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (r *Rules) all(fieldPath, conjunction string, ctx Context) (bool, error) {
	for _, term := range strings.Split(conjunction, "&&") {
		ok, err := r.term(fieldPath, strings.TrimSpace(term), ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Check reports structural problems with rule without evaluating it against
// answers: malformed terms and shorthand subjects that match no field.
func (r *Rules) Check(fieldPath, rule string) error {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" || strings.EqualFold(trimmed, Always) {
		return nil
	}
	if err := wellFormed(trimmed); err != nil {
		return err
	}
	for _, disjunct := range strings.Split(trimmed, "||") {
		for _, term := range strings.Split(disjunct, "&&") {
			term = strings.ToLower(strings.TrimSpace(term))
			if strings.Contains(term, "==") || strings.Contains(term, "!=") {
				if _, err := r.term(fieldPath, term, Context{}); err != nil {
					return err
				}
				continue
			}
			if !strings.HasPrefix(term, shorthandPrefix) {
				continue
			}
			subject, _, ok := splitShorthand(term)
			if !ok {
				continue
			}
			if _, found := r.resolve(fieldPath, subject); !found {
				return fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
			}
		}
	}
	return nil
}

func splitShorthand(rule string) (string, string, bool) {
	body := strings.TrimPrefix(rule, shorthandPrefix)
	idx := strings.LastIndex(body, "_")
	if idx <= 0 || idx == len(body)-1 {
		return "", "", false
	}
	return body[:idx], body[idx+1:], true
}

func wellFormed(rule string) error {
	for _, disjunct := range strings.Split(rule, "||") {
		for _, term := range strings.Split(disjunct, "&&") {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("%w: empty term in %q", ErrMalformedRule, rule)
			}
		}
	}
	return nil
}

func (r *Rules) term(fieldPath, term string, ctx Context) (bool, error) {
	if strings.EqualFold(term, Always) {
		return true, nil
	}

	for _, op := range []string{"!=", "=="} {
		if idx := strings.Index(term, op); idx >= 0 {
			name := strings.TrimSpace(term[:idx])
			want := unquote(strings.TrimSpace(term[idx+len(op):]))
			if name == "" || want == "" {
				return false, fmt.Errorf("%w: %q", ErrMalformedRule, term)
			}
			matched := matches(lookup(ctx, name), want)
			if op == "!=" {
				return !matched, nil
			}
			return matched, nil
		}
	}

	lower := strings.ToLower(term)
	if strings.HasPrefix(lower, shorthandPrefix) {
		if ok, handled := r.shorthand(fieldPath, lower, ctx); handled {
			return ok, nil
		}
	}

	return len(nonBlank(lookup(ctx, term))) > 0, nil
}

// shorthand resolves "if_<subject>_<value>". The value is the segment after
// the last underscore. Subjects matching no field leave the question visible
// so eligibility questions are still asked.
func (r *Rules) shorthand(fieldPath, rule string, ctx Context) (bool, bool) {
	subject, want, ok := splitShorthand(rule)
	if !ok {
		return false, false
	}

	field, ok := r.resolve(fieldPath, subject)
	if !ok {
		return true, true
	}
	return matches(ctx.Answers(field), want), true
}

func (r *Rules) resolve(self, subject string) (string, bool) {
	for _, name := range r.fields {
		if name != self && name == subject {
			return name, true
		}
	}
	for _, name := range r.fields {
		if name != self && strings.Contains(name, subject) {
			return name, true
		}
	}
	return "", false
}

func lookup(ctx Context, name string) []string {
	if key, ok := strings.CutPrefix(name, "extras."); ok {
		value, found := ctx.Extras[key]
		if !found || value == nil {
			return nil
		}
		return model.Values{key: value}.List(key)
	}
	return ctx.Answers(name)
}

func matches(values []string, want string) bool {
	key := normalize.Sanitize(want)
	for _, value := range values {
		if strings.TrimSpace(value) == want {
			return true
		}
		if key != "" && normalize.Sanitize(value) == key {
			return true
		}
	}
	return false
}

func nonBlank(values []string) []string {
	var out []string
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}
