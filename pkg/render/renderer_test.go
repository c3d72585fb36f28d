package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/render"
	"github.com/goliatone/go-screener/pkg/widgets"
)

func TestField_FixedConstraints(t *testing.T) {
	r := render.New()

	cases := []struct {
		name string
		q    model.Question
		kind model.WidgetKind
		want model.Constraints
	}{
		{
			name: "phone",
			q:    model.Question{FieldName: "phone", Text: "Phone"},
			kind: model.WidgetPhone,
			want: model.Constraints{MaxLength: 10, InputMode: "tel"},
		},
		{
			name: "date",
			q:    model.Question{FieldName: "dob", Text: "Date of birth"},
			kind: model.WidgetDate,
			want: model.Constraints{MaxLength: 10, Format: "MM/DD/YYYY"},
		},
		{
			name: "weight",
			q:    model.Question{FieldName: "weight", Text: "Weight"},
			kind: model.WidgetWeight,
			want: model.Constraints{Min: model.Float(50), Max: model.Float(500), InputMode: "numeric"},
		},
		{
			name: "textarea",
			q:    model.Question{FieldName: "notes", Text: "Describe"},
			kind: model.WidgetTextarea,
			want: model.Constraints{Rows: 4},
		},
		{
			name: "file",
			q:    model.Question{FieldName: "id_photo", Text: "Upload ID"},
			kind: model.WidgetFile,
			want: model.Constraints{Accept: "image/*,.pdf"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Field(tc.q, tc.kind)
			if diff := cmp.Diff(tc.want, got.Constraints); diff != "" {
				t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestField_HeightParts(t *testing.T) {
	field := render.New().Field(model.Question{FieldName: "height", Text: "Height", Required: true}, model.WidgetHeight)

	want := []model.FieldPart{
		{Name: "height_feet", Label: "Feet", Constraints: model.Constraints{Min: model.Float(3), Max: model.Float(8), InputMode: "numeric"}},
		{Name: "height_inches", Label: "Inches", Constraints: model.Constraints{Min: model.Float(0), Max: model.Float(11), InputMode: "numeric"}},
	}
	if diff := cmp.Diff(want, field.Parts); diff != "" {
		t.Fatalf("height parts mismatch (-want +got):\n%s", diff)
	}
	if !field.Required {
		t.Fatalf("expected required flag to carry over")
	}
}

func TestField_NumberLowerBound(t *testing.T) {
	r := render.New()

	plain := r.Field(model.Question{FieldName: "count"}, model.WidgetNumber)
	if plain.Constraints.Min == nil || *plain.Constraints.Min != 1 {
		t.Fatalf("expected default min 1, got %v", plain.Constraints.Min)
	}

	anyValue := r.Field(model.Question{
		FieldName: "count",
		Rules:     model.RuleSets{Safe: []string{"any_valid"}},
	}, model.WidgetNumber)
	if anyValue.Constraints.Min != nil {
		t.Fatalf("expected no lower bound for any_valid, got %v", *anyValue.Constraints.Min)
	}

	explicit := r.Field(model.Question{
		FieldName: "count",
		Min:       model.Float(0),
		Max:       model.Float(20),
		Rules:     model.RuleSets{Safe: []string{"any_valid"}},
	}, model.WidgetNumber)
	if explicit.Constraints.Min == nil || *explicit.Constraints.Min != 0 {
		t.Fatalf("expected explicit min to win, got %v", explicit.Constraints.Min)
	}
	if explicit.Constraints.Max == nil || *explicit.Constraints.Max != 20 {
		t.Fatalf("expected explicit max, got %v", explicit.Constraints.Max)
	}
}

func TestField_OptionsCarryClassification(t *testing.T) {
	q := model.Question{
		FieldName:    "glp1",
		Text:         "Are you taking other GLP-1s?",
		Options:      []string{"No", "yes", "not_sure"},
		OptionLabels: map[string]string{"not_sure": "I'm not sure"},
		Rules: model.RuleSets{
			Safe:       []string{"no"},
			Flag:       []string{"not_sure"},
			Disqualify: []string{"yes"},
		},
	}
	field := render.New().Field(q, model.WidgetRadio)

	want := []model.Option{
		{Value: "no", Label: "No", Raw: "No", Classification: model.ClassSafe},
		{Value: "yes", Label: "Yes", Raw: "yes", Classification: model.ClassDisqualify},
		{Value: "not_sure", Label: "I'm not sure", Raw: "not_sure", Classification: model.ClassFlag},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestField_DefaultChoices(t *testing.T) {
	r := render.New()

	gender := r.Field(model.Question{FieldName: "gender", Text: "Gender"}, model.WidgetRadio)
	if got := []string{gender.Options[0].Value, gender.Options[1].Value}; !cmp.Equal(got, []string{"male", "female"}) {
		t.Fatalf("expected male/female defaults, got %v", got)
	}

	selectField := r.Field(model.Question{FieldName: "smoker", Text: "Do you smoke?"}, model.WidgetSelect)
	if len(selectField.Options) != 2 || selectField.Placeholder != render.SelectPlaceholder {
		t.Fatalf("expected yes/no select with placeholder, got %+v", selectField)
	}

	checkbox := r.Field(model.Question{FieldName: "symptoms", Text: "Symptoms"}, model.WidgetCheckbox)
	if len(checkbox.Options) != 0 {
		t.Fatalf("multi-select must not invent options, got %+v", checkbox.Options)
	}
}

func TestField_IsPure(t *testing.T) {
	q := model.Question{
		FieldName: "count",
		Min:       model.Float(2),
		Options:   []string{"a"},
	}
	r := render.New()
	field := r.Field(q, model.WidgetNumber)
	*field.Constraints.Min = 99

	if *q.Min != 2 {
		t.Fatalf("renderer leaked a pointer into the question")
	}
	if diff := cmp.Diff(r.Field(q, model.WidgetNumber), r.Field(q, model.WidgetNumber)); diff != "" {
		t.Fatalf("renderer is not deterministic:\n%s", diff)
	}
}

func TestForm_RendersEveryStep(t *testing.T) {
	form := model.FormModel{
		Title:    "Intake",
		Category: "weightloss",
		Sections: []model.Section{
			{ID: "basics", Title: "Basics", Questions: []model.Question{{ID: "q1", FieldName: "email", Text: "Email"}}},
			{ID: "health", Title: "Health", Questions: []model.Question{{ID: "q2", FieldName: "allergies", Text: "Any allergies?"}}},
		},
	}

	tree := render.New().Form(form)
	if tree.Mode != model.ModeWizard || len(tree.Steps) != 2 {
		t.Fatalf("unexpected tree shape: %+v", tree)
	}
	kinds := []model.WidgetKind{tree.Steps[0].Fields[0].Kind, tree.Steps[1].Fields[0].Kind}
	if diff := cmp.Diff([]model.WidgetKind{model.WidgetEmail, model.WidgetTextarea}, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_CustomResolver(t *testing.T) {
	r := render.New(render.WithResolver(widgets.NewRegistry(widgets.ExplicitOnly())))
	field := r.Describe(model.Question{FieldName: "email", Text: "Email"})
	if field.Kind != model.WidgetText {
		t.Fatalf("expected explicit-only resolver to ignore keywords, got %q", field.Kind)
	}
}

func TestFormatLabel(t *testing.T) {
	cases := map[string]string{
		"any_valid":     "Yes",
		"any_text":      "Yes",
		"none":          "No",
		"type_2":        "Type 2",
		"HIGH_pressure": "High Pressure",
		"male":          "Male",
	}
	for input, want := range cases {
		if got := render.FormatLabel(input); got != want {
			t.Fatalf("FormatLabel(%q): want %q got %q", input, want, got)
		}
	}
}

func TestField_CollidingOptionValuesStayDistinct(t *testing.T) {
	q := model.Question{
		FieldName: "age",
		Text:      "How old are you?",
		Options:   []string{"<18", "18+", "Not sure"},
		Rules: model.RuleSets{
			Safe:       []string{"18+"},
			Disqualify: []string{"<18"},
		},
	}
	field := render.New().Field(q, model.WidgetRadio)

	want := []model.Option{
		{Value: "<18", Label: "<18", Raw: "<18", Classification: model.ClassDisqualify},
		{Value: "18+", Label: "18+", Raw: "18+", Classification: model.ClassSafe},
		{Value: "not_sure", Label: "Not Sure", Raw: "Not sure", Classification: model.ClassSafe},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionValues(t *testing.T) {
	got := render.OptionValues([]string{"Yes", "No", "<18", " 18+ "})
	if diff := cmp.Diff([]string{"yes", "no", "<18", "18+"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
