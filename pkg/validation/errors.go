package validation

import (
	"fmt"
	"strings"
)

// Messages reported by the engine.
const (
	MsgRequired         = "field required"
	MsgInvalidEmail     = "invalid email"
	MsgInvalidPhone     = "invalid phone"
	MsgSelectionMissing = "selection required"
	MsgInvalidSelection = "invalid selection"
	MsgInvalidNumber    = "invalid number"
	MsgOutOfRange       = "out of range"
	MsgInvalidDate      = "invalid date"
)

// FieldError is one failing field or choice group. Input names the value key
// that failed, which differs from Field for compound widgets.
type FieldError struct {
	Field   string `json:"field"`
	Input   string `json:"input"`
	Message string `json:"message"`
}

// Error collects every FieldError of a step.
type Error struct {
	Step   int          `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation: no errors"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Input+": "+field.Message)
	}
	return fmt.Sprintf("validation: %d field(s) failed: %s", len(e.Fields), strings.Join(parts, "; "))
}

// Messages groups messages by input name.
func (e *Error) Messages() map[string][]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Fields))
	for _, field := range e.Fields {
		out[field.Input] = append(out[field.Input], field.Message)
	}
	return out
}

// Has reports whether field (or one of its inputs) failed.
func (e *Error) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, item := range e.Fields {
		if item.Field == field || item.Input == field {
			return true
		}
	}
	return false
}
