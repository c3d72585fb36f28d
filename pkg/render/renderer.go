package render

import (
	"strings"

	"github.com/goliatone/go-screener/pkg/classify"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/normalize"
	"github.com/goliatone/go-screener/pkg/widgets"
)

// Fixed widget constraints.
const (
	PhoneDigits        = 10
	DateLength         = 10
	DateFormat         = "MM/DD/YYYY"
	HeightFeetMin      = 3
	HeightFeetMax      = 8
	HeightInchesMin    = 0
	HeightInchesMax    = 11
	WeightMin          = 50
	WeightMax          = 500
	NumberMin          = 1
	TextareaRows       = 4
	FileAccept         = "image/*,.pdf"
	SelectPlaceholder  = "Select an option"
	AnyValueSentinel   = "any_valid"
	HeightFeetSuffix   = "_feet"
	HeightInchesSuffix = "_inches"
)

// Renderer produces field descriptions. It holds no per-form state and is
// safe for concurrent use.
type Renderer struct {
	resolver widgets.Resolver
	labeler  func(string) string
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithResolver swaps the question type resolver.
func WithResolver(resolver widgets.Resolver) Option {
	return func(r *Renderer) {
		if resolver != nil {
			r.resolver = resolver
		}
	}
}

// WithLabeler overrides option label formatting.
func WithLabeler(labeler func(string) string) Option {
	return func(r *Renderer) {
		if labeler != nil {
			r.labeler = labeler
		}
	}
}

// New constructs a Renderer backed by the default widget registry.
func New(options ...Option) *Renderer {
	r := &Renderer{
		resolver: widgets.NewRegistry(),
		labeler:  FormatLabel,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Form renders every section of form.
func (r *Renderer) Form(form model.FormModel) model.Tree {
	tree := model.Tree{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Category: form.Category,
		Mode:     form.Mode(),
		Steps:    make([]model.Step, 0, len(form.Sections)),
	}
	for idx, section := range form.Sections {
		tree.Steps = append(tree.Steps, r.Step(idx, section))
	}
	return tree
}

// Step renders one section.
func (r *Renderer) Step(index int, section model.Section) model.Step {
	step := model.Step{
		Index:  index,
		ID:     section.ID,
		Title:  section.Title,
		Fields: make([]model.FieldDescription, 0, len(section.Questions)),
	}
	for _, q := range section.Questions {
		step.Fields = append(step.Fields, r.Describe(q))
	}
	return step
}

// Describe resolves the widget kind for q and renders it.
func (r *Renderer) Describe(q model.Question) model.FieldDescription {
	return r.Field(q, r.resolver.Resolve(q))
}

// Field renders q as kind.
func (r *Renderer) Field(q model.Question, kind model.WidgetKind) model.FieldDescription {
	field := model.FieldDescription{
		QuestionID:        q.ID,
		Name:              q.FieldName,
		Label:             q.Text,
		Kind:              kind,
		Required:          q.Required,
		Placeholder:       q.Placeholder,
		ShowCondition:     q.ShowCondition,
		DisqualifyMessage: q.DisqualifyMessage,
	}

	switch kind {
	case model.WidgetEmail:
		field.Constraints.InputMode = "email"
	case model.WidgetPhone:
		field.Constraints.MaxLength = PhoneDigits
		field.Constraints.InputMode = "tel"
	case model.WidgetDate:
		field.Constraints.MaxLength = DateLength
		field.Constraints.Format = DateFormat
		if field.Placeholder == "" {
			field.Placeholder = DateFormat
		}
	case model.WidgetHeight:
		field.Parts = []model.FieldPart{
			{
				Name:  q.FieldName + HeightFeetSuffix,
				Label: "Feet",
				Constraints: model.Constraints{
					Min:       model.Float(HeightFeetMin),
					Max:       model.Float(HeightFeetMax),
					InputMode: "numeric",
				},
			},
			{
				Name:  q.FieldName + HeightInchesSuffix,
				Label: "Inches",
				Constraints: model.Constraints{
					Min:       model.Float(HeightInchesMin),
					Max:       model.Float(HeightInchesMax),
					InputMode: "numeric",
				},
			},
		}
	case model.WidgetWeight:
		field.Constraints.Min = model.Float(WeightMin)
		field.Constraints.Max = model.Float(WeightMax)
		field.Constraints.InputMode = "numeric"
	case model.WidgetNumber:
		field.Constraints.Min = numberMin(q)
		field.Constraints.Max = copyFloat(q.Max)
		field.Constraints.InputMode = "numeric"
	case model.WidgetTextarea:
		field.Constraints.Rows = TextareaRows
		if q.Rows > 0 {
			field.Constraints.Rows = q.Rows
		}
	case model.WidgetFile:
		field.Constraints.Accept = FileAccept
		if accept := strings.TrimSpace(q.Accept); accept != "" {
			field.Constraints.Accept = accept
		}
	case model.WidgetRadio, model.WidgetSelect, model.WidgetCheckbox:
		field.Options = r.options(q, kind)
		if kind == model.WidgetSelect && field.Placeholder == "" {
			field.Placeholder = SelectPlaceholder
		}
	}
	return field
}

// numberMin drops the lower bound when the safe set accepts any value, unless
// the question sets one explicitly.
func numberMin(q model.Question) *float64 {
	if q.Min != nil {
		return copyFloat(q.Min)
	}
	for _, value := range q.Rules.Safe {
		if normalize.Sanitize(value) == AnyValueSentinel {
			return nil
		}
	}
	return model.Float(NumberMin)
}

func (r *Renderer) options(q model.Question, kind model.WidgetKind) []model.Option {
	raws := q.Options
	if len(raws) == 0 && kind.SingleChoice() {
		raws = defaultChoices(q)
	}
	if len(raws) == 0 {
		return nil
	}
	values := OptionValues(raws)
	out := make([]model.Option, 0, len(raws))
	for i, raw := range raws {
		label := q.OptionLabels[raw]
		if label == "" {
			label = r.labeler(raw)
		}
		out = append(out, model.Option{
			Value:          values[i],
			Label:          label,
			Raw:            raw,
			Classification: classify.Classify(q, raw),
		})
	}
	return out
}

// defaultChoices fills single-choice questions that list no options.
func defaultChoices(q model.Question) []string {
	text := strings.ToLower(q.Text)
	if strings.Contains(text, "gender") || strings.Contains(text, "sex") {
		return []string{"male", "female"}
	}
	return []string{"yes", "no"}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(*v)
}
