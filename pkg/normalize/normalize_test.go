package normalize_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/normalize"
)

func mustParse(t *testing.T, raw string) descriptor.Node {
	t.Helper()
	node, err := descriptor.Parse([]byte(raw), descriptor.FormatAuto)
	if err != nil {
		t.Fatalf("parse descriptor: %v", err)
	}
	return node
}

func sectionTitles(form model.FormModel) []string {
	var out []string
	for _, section := range form.Sections {
		out = append(out, section.Title)
	}
	return out
}

func TestNormalize_ListIsSingleSection(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `[{"text":"Email *"},{"text":"Phone number"}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if form.Mode() != model.ModeSingle {
		t.Fatalf("expected single mode, got %q", form.Mode())
	}
	if diff := cmp.Diff([]string{"Questions"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	email := form.Sections[0].Questions[0]
	if email.Text != "Email" || !email.Required {
		t.Fatalf("expected starred email to be required with marker removed: %+v", email)
	}
	if form.Title != normalize.DefaultTitle || form.Category != normalize.DefaultCategory {
		t.Fatalf("expected default metadata, got %q/%q", form.Title, form.Category)
	}
}

func TestNormalize_OneCandidateKeyIsSingleSection(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `{
		"title": "Intake",
		"category": "weightloss",
		"questions": [{"text": "ignored reserved key"}],
		"basics": [{"text": "Email"}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if form.Mode() != model.ModeSingle {
		t.Fatalf("expected single mode, got %q", form.Mode())
	}
	if diff := cmp.Diff([]string{"Basics"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if form.Title != "Intake" || form.Category != "weightloss" {
		t.Fatalf("metadata not read: %+v", form)
	}
}

func TestNormalize_MultiSectionFollowsDeclarationOrder(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `{
		"title": "Intake",
		"zeta_history": [{"text": "Any surgeries?"}],
		"alpha": [{"text": "Email"}],
		"middle": [{"text": "Phone"}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if form.Mode() != model.ModeWizard {
		t.Fatalf("expected wizard mode, got %q", form.Mode())
	}
	if diff := cmp.Diff([]string{"Zeta History", "Alpha", "Middle"}, sectionTitles(form)); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_YAMLKeepsOrder(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, "title: Intake\nsecond:\n  - text: A\nfirst:\n  - text: B\n"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff([]string{"Second", "First"}, sectionTitles(form)); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_QuestionsShorthandFallback(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `{
		"title": "Medical Screening",
		"config": {"theme": "light"},
		"questions": [{"text": "Full Name", "required": true}]
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff([]string{"Questions"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if form.Metadata["config"] == nil {
		t.Fatalf("expected config to be carried in metadata")
	}
}

func TestNormalize_SectionObjects(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `[
		{"title": "About you", "questions": [{"text": "Email"}]},
		{"title": "Health", "questions": [{"text": "Allergies"}]}
	]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff([]string{"About you", "Health"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if form.Sections[0].ID != "about_you" {
		t.Fatalf("unexpected section id %q", form.Sections[0].ID)
	}
}

func TestNormalize_NotionExport(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "notion_export.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	form, err := normalize.Normalize(mustParse(t, string(raw)))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if form.Title != "Weight Loss Intake" || form.Category != "weightloss" || form.ConsultType != "async" {
		t.Fatalf("metadata mismatch: %q %q %q", form.Title, form.Category, form.ConsultType)
	}
	if diff := cmp.Diff([]string{"Basics", "Health History"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	basics := form.Sections[0].Questions
	if basics[0].Text != "Biological sex" {
		t.Fatalf("expected order sort to put sex first, got %q", basics[0].Text)
	}
	email := basics[1]
	if email.Text != "What is your email address?" || email.TypeHint != "email" || !email.Required {
		t.Fatalf("email question mismatch: %+v", email)
	}

	pregnant := form.Sections[1].Questions[0]
	want := model.Question{
		ID:                "q_are_you_currently_pregnant_3",
		Text:              "Are you currently pregnant?",
		FieldName:         "are_you_currently_pregnant",
		Options:           []string{"no", "yes"},
		Rules:             model.RuleSets{Safe: []string{"no"}, Disqualify: []string{"yes"}},
		ShowCondition:     "if_gender_female",
		DisqualifyMessage: "We cannot treat during pregnancy.",
	}
	if diff := cmp.Diff(want, pregnant); diff != "" {
		t.Fatalf("pregnant question mismatch (-want +got):\n%s", diff)
	}

	meds := form.Sections[1].Questions[1]
	if len(meds.Options) != 0 {
		t.Fatalf("wildcard rules must keep the question free form, got options %v", meds.Options)
	}
}

func TestNormalize_DeterministicIDs(t *testing.T) {
	raw := `{"a": [{"text": "Email"}, {"text": "Phone"}], "b": [{"text": "Email"}]}`
	first, err := normalize.Normalize(mustParse(t, raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	second, err := normalize.Normalize(mustParse(t, raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-normalising changed the model (-first +second):\n%s", diff)
	}
	ids := []string{
		first.Sections[0].Questions[0].ID,
		first.Sections[0].Questions[1].ID,
		first.Sections[1].Questions[0].ID,
	}
	if diff := cmp.Diff([]string{"q_email_1", "q_phone_2", "q_email_3"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_FieldNames(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `[
		{"name": "First name"},
		{"text": "Last name", "name": "last"},
		{"text": "Zip", "field": "postal_code"},
		{"question": "Date of Birth?"}
	]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var names []string
	for _, q := range form.Sections[0].Questions {
		names = append(names, q.FieldName)
	}
	if diff := cmp.Diff([]string{"first_name", "last", "postal_code", "date_of_birth"}, names); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_OptionsAndHints(t *testing.T) {
	form, err := normalize.Normalize(mustParse(t, `[{
		"text": "Which symptoms?",
		"questionType": "Checkbox",
		"allowMultiple": "true",
		"choices": ["cough", {"value": "fever", "label": "High fever"}, "cough"],
		"min": "2",
		"rows": 6
	}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	q := form.Sections[0].Questions[0]
	if diff := cmp.Diff([]string{"cough", "fever"}, q.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if q.OptionLabels["fever"] != "High fever" {
		t.Fatalf("expected option label, got %+v", q.OptionLabels)
	}
	if q.TypeHint != "checkbox" || !q.Multiple || q.Rows != 6 {
		t.Fatalf("hints mismatch: %+v", q)
	}
	if q.Min == nil || *q.Min != 2 {
		t.Fatalf("expected min 2, got %v", q.Min)
	}
}

func TestNormalize_Errors(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want error
	}{
		"missing text":    {`[{"type": "email"}]`, normalize.ErrMissingText},
		"marker only":     {`[{"text": " * "}]`, normalize.ErrMissingText},
		"collision":       {`[{"text": "Email"}, {"text": "email?"}]`, normalize.ErrFieldCollision},
		"duplicate id":    {`{"a": [{"id": "q1", "text": "A"}], "b": [{"id": "q1", "text": "B"}]}`, normalize.ErrDuplicateID},
		"no sections":     {`{"title": "Empty"}`, normalize.ErrNoSections},
		"scalar document": {`"just text"`, normalize.ErrUnsupportedShape},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := normalize.Normalize(mustParse(t, tc.raw))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var schemaErr *normalize.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %T", err)
			}
		})
	}
}

func TestNormalize_CollisionAcrossSectionsAllowed(t *testing.T) {
	if _, err := normalize.Normalize(mustParse(t, `{"a": [{"text": "Email"}], "b": [{"text": "Email"}]}`)); err != nil {
		t.Fatalf("expected cross-section duplicates to normalise, got %v", err)
	}
}

func TestNormalizeValue_SortsMapKeys(t *testing.T) {
	form, err := normalize.NormalizeValue(map[string]any{
		"title": "Intake",
		"zeta":  []any{map[string]any{"text": "Z"}},
		"alpha": []any{map[string]any{"text": "A"}},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "Zeta"}, sectionTitles(form)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizer_Defaults(t *testing.T) {
	n := normalize.New(
		normalize.WithDefaultTitle("Screener"),
		normalize.WithDefaultCategory("hair"),
		normalize.WithDefaultConsultType("sync"),
	)
	form, err := n.Normalize(mustParse(t, `[{"text": "Email"}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if form.Title != "Screener" || form.Category != "hair" || form.ConsultType != "sync" {
		t.Fatalf("defaults not applied: %+v", form)
	}
}
