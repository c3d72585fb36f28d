package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/render"
	"github.com/goliatone/go-screener/pkg/visibility"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DefaultDateLayouts accepts the rendered MM/DD/YYYY format and ISO dates.
var DefaultDateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// Engine validates captured values against rendered field descriptions.
type Engine struct {
	visibility  visibility.Evaluator
	dateLayouts []string
}

// Option customises an Engine.
type Option func(*Engine)

// WithVisibility makes the engine skip fields whose show condition fails.
func WithVisibility(ev visibility.Evaluator) Option {
	return func(e *Engine) {
		e.visibility = ev
	}
}

// WithDateLayouts replaces the accepted date layouts.
func WithDateLayouts(layouts ...string) Option {
	return func(e *Engine) {
		if len(layouts) > 0 {
			e.dateLayouts = append([]string(nil), layouts...)
		}
	}
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{dateLayouts: DefaultDateLayouts}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// With returns a copy of e with options applied.
func (e *Engine) With(options ...Option) *Engine {
	clone := *e
	clone.dateLayouts = append([]string(nil), e.dateLayouts...)
	for _, opt := range options {
		if opt != nil {
			opt(&clone)
		}
	}
	return &clone
}

// Validate checks values for fields and returns a *Error listing every
// failure, or nil.
func (e *Engine) Validate(fields []model.FieldDescription, values model.Values) error {
	return e.ValidateContext(fields, visibility.Context{Values: values})
}

// ValidateContext is Validate with passthrough context available to show
// conditions.
func (e *Engine) ValidateContext(fields []model.FieldDescription, ctx visibility.Context) error {
	failures := e.Check(fields, ctx)
	if len(failures) == 0 {
		return nil
	}
	return &Error{Fields: failures}
}

// Check returns the failures without wrapping them.
func (e *Engine) Check(fields []model.FieldDescription, ctx visibility.Context) []FieldError {
	values := ctx.Values
	var failures []FieldError
	for _, field := range fields {
		if visible, _ := visibility.Visible(e.visibility, field, ctx); !visible {
			continue
		}
		failures = append(failures, e.field(field, values)...)
	}
	return failures
}

func (e *Engine) field(field model.FieldDescription, values model.Values) []FieldError {
	fail := func(input, message string) []FieldError {
		return []FieldError{{Field: field.Name, Input: input, Message: message}}
	}

	if len(field.Parts) > 0 {
		var out []FieldError
		for _, part := range field.Parts {
			out = append(out, e.part(field, part, values)...)
		}
		return out
	}

	switch {
	case field.Kind.SingleChoice():
		if values.Blank(field.Name) {
			if field.Required {
				return fail(field.Name, MsgSelectionMissing)
			}
			return nil
		}
		if len(field.Options) > 0 && !validChoice(field.Options, values.String(field.Name)) {
			return fail(field.Name, MsgInvalidSelection)
		}
		return nil
	case field.Kind.MultiChoice():
		selected := nonBlank(values.List(field.Name))
		if len(selected) == 0 {
			if field.Required {
				return fail(field.Name, MsgRequired)
			}
			return nil
		}
		if len(field.Options) > 0 {
			for _, value := range selected {
				if !validChoice(field.Options, value) {
					return fail(field.Name, MsgInvalidSelection)
				}
			}
		}
		return nil
	}

	if values.Blank(field.Name) {
		if field.Required {
			return fail(field.Name, MsgRequired)
		}
		return nil
	}
	value := strings.TrimSpace(values.String(field.Name))

	switch field.Kind {
	case model.WidgetEmail:
		if !ValidEmail(value) {
			return fail(field.Name, MsgInvalidEmail)
		}
	case model.WidgetPhone:
		if !ValidPhone(value) {
			return fail(field.Name, MsgInvalidPhone)
		}
	case model.WidgetNumber, model.WidgetWeight:
		if message := checkNumber(value, field.Constraints); message != "" {
			return fail(field.Name, message)
		}
	case model.WidgetDate:
		if !e.validDate(value) {
			return fail(field.Name, MsgInvalidDate)
		}
	}
	return nil
}

func (e *Engine) part(field model.FieldDescription, part model.FieldPart, values model.Values) []FieldError {
	if values.Blank(part.Name) {
		if field.Required {
			return []FieldError{{Field: field.Name, Input: part.Name, Message: MsgRequired}}
		}
		return nil
	}
	if message := checkNumber(strings.TrimSpace(values.String(part.Name)), part.Constraints); message != "" {
		return []FieldError{{Field: field.Name, Input: part.Name, Message: message}}
	}
	return nil
}

// ValidEmail reports whether value looks like local@domain.tld.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// ValidPhone reports whether value holds exactly ten digits once every other
// character is dropped.
func ValidPhone(value string) bool {
	return len(Digits(value)) == render.PhoneDigits
}

// Digits strips every non-digit character.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkNumber(value string, constraints model.Constraints) string {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return MsgInvalidNumber
	}
	if constraints.Min != nil && number < *constraints.Min {
		return MsgOutOfRange
	}
	if constraints.Max != nil && number > *constraints.Max {
		return MsgOutOfRange
	}
	return ""
}

func (e *Engine) validDate(value string) bool {
	for _, layout := range e.dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func validChoice(options []model.Option, value string) bool {
	value = strings.TrimSpace(value)
	key := render.OptionValue(value)
	for _, option := range options {
		if option.Value == value || option.Raw == value || option.Value == key {
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
