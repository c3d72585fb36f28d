package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-screener/pkg/model"
)

func TestFormModel_ModeFollowsSectionCount(t *testing.T) {
	single := model.FormModel{Sections: []model.Section{{ID: "questions"}}}
	if got := single.Mode(); got != model.ModeSingle {
		t.Fatalf("expected single mode, got %q", got)
	}

	wizard := model.FormModel{Sections: []model.Section{{ID: "a"}, {ID: "b"}}}
	if got := wizard.Mode(); got != model.ModeWizard {
		t.Fatalf("expected wizard mode, got %q", got)
	}
}

func TestFormModel_CloneIsDeep(t *testing.T) {
	form := model.FormModel{
		Title:    "Intake",
		Metadata: map[string]any{"source": "notion"},
		Sections: []model.Section{{
			ID: "basics",
			Questions: []model.Question{{
				ID:      "q_email_1",
				Options: []string{"yes", "no"},
				Min:     model.Float(1),
			}},
		}},
	}

	clone := form.Clone()
	clone.Sections[0].Questions[0].Options[0] = "changed"
	*clone.Sections[0].Questions[0].Min = 5
	clone.Metadata["source"] = "changed"

	if form.Sections[0].Questions[0].Options[0] != "yes" {
		t.Fatalf("clone shares option slice")
	}
	if *form.Sections[0].Questions[0].Min != 1 {
		t.Fatalf("clone shares min pointer")
	}
	if form.Metadata["source"] != "notion" {
		t.Fatalf("clone shares metadata map")
	}
}

func TestValues_Accessors(t *testing.T) {
	values := model.Values{
		"email":    "a@b.co",
		"symptoms": []string{"cough", "fever"},
		"blank":    "   ",
		"anyList":  []any{"x", 2},
	}

	if got := values.String("symptoms"); got != "cough, fever" {
		t.Fatalf("unexpected joined list %q", got)
	}
	if diff := cmp.Diff([]string{"x", "2"}, values.List("anyList")); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !values.Blank("blank") || !values.Blank("missing") {
		t.Fatalf("expected blank answers to report blank")
	}
	if values.Blank("email") {
		t.Fatalf("expected email to be present")
	}

	clone := values.Clone()
	clone["symptoms"].([]string)[0] = "changed"
	if values.List("symptoms")[0] != "cough" {
		t.Fatalf("clone shares list answers")
	}
}

func TestFieldDescription_Inputs(t *testing.T) {
	height := model.FieldDescription{
		Name: "height",
		Parts: []model.FieldPart{
			{Name: "height_feet"},
			{Name: "height_inches"},
		},
	}
	if diff := cmp.Diff([]string{"height_feet", "height_inches"}, height.Inputs()); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
	email := model.FieldDescription{Name: "email"}
	if diff := cmp.Diff([]string{"email"}, email.Inputs()); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestClassification_Severity(t *testing.T) {
	if !(model.ClassDisqualify.Severity() > model.ClassFlag.Severity() &&
		model.ClassFlag.Severity() > model.ClassSafe.Severity()) {
		t.Fatalf("unexpected severity ordering")
	}
}
