package normalize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingText marks a question entry without usable text.
	ErrMissingText = errors.New("question text is missing")
	// ErrFieldCollision marks two questions sharing a field name in a section.
	ErrFieldCollision = errors.New("field name collides within section")
	// ErrDuplicateID marks two questions sharing an explicit id.
	ErrDuplicateID = errors.New("duplicate question id")
	// ErrNoSections marks descriptors without any question list.
	ErrNoSections = errors.New("no question sections found")
	// ErrUnsupportedShape marks descriptors that are neither a map nor a list.
	ErrUnsupportedShape = errors.New("unsupported descriptor shape")
)

// SchemaError reports why a descriptor could not be normalised. It is fatal to
// the render; no partial form is produced.
type SchemaError struct {
	Section string
	Index   int
	Field   string
	Detail  string
	Err     error
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("normalize: ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("invalid descriptor")
	}
	if e.Section != "" {
		fmt.Fprintf(&b, " (section %q, entry %d)", e.Section, e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
