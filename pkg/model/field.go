package model

// Constraints carries the per-widget input limits. Nil bounds mean unbounded.
type Constraints struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Format    string   `json:"format,omitempty"`
	Accept    string   `json:"accept,omitempty"`
	Rows      int      `json:"rows,omitempty"`
	InputMode string   `json:"inputMode,omitempty"`
}

// Option is one selectable answer.
type Option struct {
	Value          string         `json:"value"`
	Label          string         `json:"label"`
	Raw            string         `json:"raw"`
	Classification Classification `json:"classification"`
}

// FieldPart is a sub-input of a compound widget (height feet/inches).
type FieldPart struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Constraints Constraints `json:"constraints"`
}

// FieldDescription is the renderer output for one question.
type FieldDescription struct {
	QuestionID        string      `json:"questionId"`
	Name              string      `json:"name"`
	Label             string      `json:"label"`
	Kind              WidgetKind  `json:"kind"`
	Required          bool        `json:"required"`
	Placeholder       string      `json:"placeholder,omitempty"`
	Constraints       Constraints `json:"constraints"`
	Options           []Option    `json:"options,omitempty"`
	Parts             []FieldPart `json:"parts,omitempty"`
	ShowCondition     string      `json:"showCondition,omitempty"`
	DisqualifyMessage string      `json:"disqualifyMessage,omitempty"`
}

// Inputs lists the value keys the field reads: the part names for compound
// widgets, the field name otherwise.
func (f FieldDescription) Inputs() []string {
	if len(f.Parts) == 0 {
		return []string{f.Name}
	}
	names := make([]string, 0, len(f.Parts))
	for _, part := range f.Parts {
		names = append(names, part.Name)
	}
	return names
}

// Step is one rendered section.
type Step struct {
	Index  int                `json:"index"`
	ID     string             `json:"id"`
	Title  string             `json:"title"`
	Fields []FieldDescription `json:"fields"`
}

// Tree is the complete field-description tree handed to a presentation layer.
type Tree struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Category string `json:"category"`
	Mode     Mode   `json:"mode"`
	Steps    []Step `json:"steps"`
}

// Fields flattens every step.
func (t Tree) Fields() []FieldDescription {
	var out []FieldDescription
	for _, step := range t.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// Float is a helper for building optional bounds.
func Float(v float64) *float64 {
	return &v
}
