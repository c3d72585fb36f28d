package widgets

import (
	"testing"

	"github.com/goliatone/go-screener/pkg/model"
)

func TestResolve_ExplicitHintWins(t *testing.T) {
	reg := NewRegistry()
	q := model.Question{
		Text:     "What is your email?",
		TypeHint: "Textarea",
		Options:  []string{"a"},
	}
	if got := reg.Resolve(q); got != model.WidgetTextarea {
		t.Fatalf("expected explicit hint to win, got %q", got)
	}
}

func TestResolve_AliasAndUnknownHints(t *testing.T) {
	reg := NewRegistry(WithAlias("longform", model.WidgetTextarea))

	cases := []struct {
		hint string
		text string
		want model.WidgetKind
	}{
		{hint: "dropdown", text: "Pick one", want: model.WidgetSelect},
		{hint: "tel", text: "Contact", want: model.WidgetPhone},
		{hint: "longform", text: "Notes", want: model.WidgetTextarea},
		{hint: "sparkline", text: "Your email", want: model.WidgetEmail},
	}
	for _, tc := range cases {
		if got := reg.Resolve(model.Question{TypeHint: tc.hint, Text: tc.text}); got != tc.want {
			t.Fatalf("hint %q: expected %q, got %q", tc.hint, tc.want, got)
		}
	}
}

func TestResolve_KeywordTable(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		text string
		want model.WidgetKind
	}{
		{"Email address", model.WidgetEmail},
		{"Phone", model.WidgetPhone},
		{"Best number to reach you", model.WidgetPhone},
		{"Date of birth", model.WidgetDate},
		{"Height", model.WidgetHeight},
		{"Current weight", model.WidgetWeight},
		{"Gender", model.WidgetRadio},
		{"Are you pregnant?", model.WidgetRadio},
		{"History of cancer", model.WidgetRadio},
		{"List any allergies", model.WidgetTextarea},
		{"Describe your symptoms", model.WidgetTextarea},
		{"Upload a photo", model.WidgetFile},
		{"Government ID", model.WidgetFile},
		{"Full name", model.WidgetText},
	}
	for _, tc := range cases {
		if got := reg.Resolve(model.Question{Text: tc.text}); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.text, tc.want, got)
		}
	}
}

func TestResolve_KeywordOrderIsPreserved(t *testing.T) {
	reg := NewRegistry()

	// email beats phone, phone beats date, height beats weight.
	cases := map[string]model.WidgetKind{
		"Email or phone number":     model.WidgetEmail,
		"Phone number and birthday": model.WidgetPhone,
		"Height and weight":         model.WidgetHeight,
		"Describe the file":         model.WidgetTextarea,
	}
	for text, want := range cases {
		if got := reg.Resolve(model.Question{Text: text}); got != want {
			t.Fatalf("%q: expected %q, got %q", text, want, got)
		}
	}
}

func TestResolve_KeywordsBeatOptions(t *testing.T) {
	reg := NewRegistry()
	q := model.Question{Text: "Describe allergies", Options: []string{"none", "some"}}
	if got := reg.Resolve(q); got != model.WidgetTextarea {
		t.Fatalf("expected keyword match before options, got %q", got)
	}
}

func TestResolve_Options(t *testing.T) {
	reg := NewRegistry()

	single := model.Question{Text: "Do you smoke?", Options: []string{"yes", "no"}}
	if got := reg.Resolve(single); got != model.WidgetRadio {
		t.Fatalf("expected radio, got %q", got)
	}

	multi := model.Question{Text: "Symptoms", Options: []string{"cough", "fever"}, Multiple: true}
	if got := reg.Resolve(multi); got != model.WidgetCheckbox {
		t.Fatalf("expected checkbox, got %q", got)
	}
}

func TestResolve_ExplicitOnlySkipsKeywords(t *testing.T) {
	reg := NewRegistry(ExplicitOnly())

	if got := reg.Resolve(model.Question{Text: "Email"}); got != model.WidgetText {
		t.Fatalf("expected keywords to be ignored, got %q", got)
	}
	if got := reg.Resolve(model.Question{Text: "Email", TypeHint: "email"}); got != model.WidgetEmail {
		t.Fatalf("expected hint to be honoured, got %q", got)
	}
	if got := reg.Resolve(model.Question{Text: "Smoke?", Options: []string{"yes"}}); got != model.WidgetRadio {
		t.Fatalf("expected options to be honoured, got %q", got)
	}
}

func TestRegister_CustomPriority(t *testing.T) {
	reg := NewRegistry()
	reg.Register(model.WidgetNumber, 200, func(q model.Question) bool {
		return q.FieldName == "age"
	})

	if got := reg.Resolve(model.Question{Text: "Date you turned this age", FieldName: "age"}); got != model.WidgetNumber {
		t.Fatalf("expected custom matcher to win, got %q", got)
	}
	if _, ok := (*Registry)(nil).Match(model.Question{}); ok {
		t.Fatalf("nil registry must not match")
	}
}
