package model

import (
	"github.com/mohae/deepcopy"
)

// WidgetKind names the input widget chosen for a question.
type WidgetKind string

const (
	WidgetText     WidgetKind = "text"
	WidgetTextarea WidgetKind = "textarea"
	WidgetEmail    WidgetKind = "email"
	WidgetPhone    WidgetKind = "phone"
	WidgetNumber   WidgetKind = "number"
	WidgetDate     WidgetKind = "date"
	WidgetHeight   WidgetKind = "height"
	WidgetWeight   WidgetKind = "weight"
	WidgetRadio    WidgetKind = "radio"
	WidgetCheckbox WidgetKind = "checkbox"
	WidgetSelect   WidgetKind = "select"
	WidgetFile     WidgetKind = "file"
)

var knownWidgets = map[WidgetKind]struct{}{
	WidgetText: {}, WidgetTextarea: {}, WidgetEmail: {}, WidgetPhone: {},
	WidgetNumber: {}, WidgetDate: {}, WidgetHeight: {}, WidgetWeight: {},
	WidgetRadio: {}, WidgetCheckbox: {}, WidgetSelect: {}, WidgetFile: {},
}

// Known reports whether k is one of the built-in widget kinds.
func (k WidgetKind) Known() bool {
	_, ok := knownWidgets[k]
	return ok
}

// SingleChoice reports whether the widget is a mutually exclusive group.
func (k WidgetKind) SingleChoice() bool {
	return k == WidgetRadio || k == WidgetSelect
}

// MultiChoice reports whether the widget accepts several values.
func (k WidgetKind) MultiChoice() bool {
	return k == WidgetCheckbox
}

// Classification is the eligibility outcome of one answer.
type Classification string

const (
	ClassSafe       Classification = "safe"
	ClassFlag       Classification = "flag"
	ClassDisqualify Classification = "disqualify"
)

// Severity orders classifications so the strongest one can be picked.
func (c Classification) Severity() int {
	switch c {
	case ClassDisqualify:
		return 2
	case ClassFlag:
		return 1
	default:
		return 0
	}
}

// RuleSets partitions answer values for one question. Values found in none of
// the sets classify as safe.
type RuleSets struct {
	Safe       []string `json:"safe,omitempty"`
	Flag       []string `json:"flag,omitempty"`
	Disqualify []string `json:"disqualify,omitempty"`
}

// Empty reports whether no rule lists are present.
func (r RuleSets) Empty() bool {
	return len(r.Safe) == 0 && len(r.Flag) == 0 && len(r.Disqualify) == 0
}

// Question is the canonical, source-independent representation of one
// question.
type Question struct {
	ID                string            `json:"id"`
	Text              string            `json:"text"`
	FieldName         string            `json:"fieldName"`
	Required          bool              `json:"required"`
	Options           []string          `json:"options,omitempty"`
	OptionLabels      map[string]string `json:"optionLabels,omitempty"`
	Rules             RuleSets          `json:"rules"`
	TypeHint          string            `json:"typeHint,omitempty"`
	Multiple          bool              `json:"multiple,omitempty"`
	ShowCondition     string            `json:"showCondition,omitempty"`
	DisqualifyMessage string            `json:"disqualifyMessage,omitempty"`
	Placeholder       string            `json:"placeholder,omitempty"`
	Min               *float64          `json:"min,omitempty"`
	Max               *float64          `json:"max,omitempty"`
	Accept            string            `json:"accept,omitempty"`
	Rows              int               `json:"rows,omitempty"`
	Order             int               `json:"order,omitempty"`
}

// Section is one step of the form.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Mode is derived from the number of sections.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeWizard Mode = "wizard"
)

// FormModel is the normalised form.
type FormModel struct {
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Category    string         `json:"category"`
	ConsultType string         `json:"consultType,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Sections    []Section      `json:"sections"`
}

// Mode returns ModeSingle for one section and ModeWizard otherwise.
func (f FormModel) Mode() Mode {
	if len(f.Sections) > 1 {
		return ModeWizard
	}
	return ModeSingle
}

// Questions flattens every section in order.
func (f FormModel) Questions() []Question {
	var out []Question
	for _, section := range f.Sections {
		out = append(out, section.Questions...)
	}
	return out
}

// Clone returns a deep copy.
func (f FormModel) Clone() FormModel {
	return deepcopy.Copy(f).(FormModel)
}
