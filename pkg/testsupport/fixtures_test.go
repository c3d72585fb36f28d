package testsupport

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-screener/pkg/model"
)

func TestFixtures_Normalize(t *testing.T) {
	form := Form(t, GLP1Screening)
	var titles []string
	for _, section := range form.Sections {
		titles = append(titles, section.Title)
	}
	if diff := cmp.Diff([]string{"Basics", "Body", "Medical"}, titles); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if form.Mode() != model.ModeWizard {
		t.Fatalf("expected wizard mode")
	}

	intake := Form(t, QuickIntake)
	if intake.Mode() != model.ModeSingle || len(intake.Questions()) != 3 {
		t.Fatalf("unexpected intake form: %+v", intake)
	}
}

func TestFixtures_Tree(t *testing.T) {
	tree := Tree(t, GLP1Screening)
	kinds := map[string]model.WidgetKind{}
	for _, field := range tree.Fields() {
		kinds[field.Name] = field.Kind
	}
	want := map[string]model.WidgetKind{
		"email":              model.WidgetEmail,
		"phone_number":       model.WidgetPhone,
		"gender":             model.WidgetRadio,
		"state":              model.WidgetRadio,
		"height":             model.WidgetHeight,
		"current_weight_lbs": model.WidgetWeight,
		"pregnant":           model.WidgetRadio,
		"thyroid_cancer":     model.WidgetRadio,
		"smoker":             model.WidgetRadio,
		"allergies":          model.WidgetTextarea,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}
