package navigator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/navigator"
	"github.com/goliatone/go-screener/pkg/normalize"
	"github.com/goliatone/go-screener/pkg/transport"
	"github.com/goliatone/go-screener/pkg/validation"
)

const screening = `{
	"title": "GLP-1 Screening",
	"category": "weight_loss",
	"consult_type": "async",
	"basics": [
		{"text": "Email *"},
		{"text": "Gender *"},
		{"text": "Do you smoke?", "fieldName": "smoker", "safe": ["no"], "flag": ["yes"]}
	],
	"medical": [
		{"text": "Are you pregnant?", "fieldName": "pregnant", "required": true,
		 "safe": ["no"], "disqualify": ["yes"],
		 "show_condition": "if_gender_female",
		 "disqualify_message": "Treatment is not available during pregnancy."},
		{"text": "Any allergies?", "fieldName": "allergies"}
	]
}`

func newForm(t *testing.T) model.FormModel {
	t.Helper()
	node, err := descriptor.Parse([]byte(screening), descriptor.FormatJSON)
	require.NoError(t, err)
	form, err := normalize.Normalize(node)
	require.NoError(t, err)
	require.Len(t, form.Sections, 2)
	return form
}

func newSession(t *testing.T, options ...navigator.Option) *navigator.Session {
	t.Helper()
	s, err := navigator.New(newForm(t), append([]navigator.Option{navigator.WithID("sess-1")}, options...)...)
	require.NoError(t, err)
	return s
}

func fillBasics(t *testing.T, s *navigator.Session, gender string) {
	t.Helper()
	require.NoError(t, s.Capture("email", "pat@example.com"))
	require.NoError(t, s.Capture("gender", gender))
	require.NoError(t, s.Capture("smoker", "no"))
}

func TestSession_InitialState(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, navigator.StatusActive, s.Status())
	assert.Equal(t, 0, s.StepIndex())
	assert.Equal(t, 2, s.Steps())
	assert.Equal(t, "sess-1", s.ID())
	assert.ErrorIs(t, s.Retreat(), navigator.ErrFirstStep)
	assert.ErrorIs(t, s.Submit(context.Background()), navigator.ErrNotCompleted)
}

func TestSession_ValidationFailureKeepsState(t *testing.T) {
	s := newSession(t)
	before := s.Snapshot()

	err := s.Advance(context.Background())
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, verr.Step)
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("gender"))
	assert.Equal(t, []string{validation.MsgSelectionMissing}, verr.Messages()["gender"])

	assert.Equal(t, before, s.Snapshot())
}

func TestSession_DisqualifiedOnSecondStep(t *testing.T) {
	s := newSession(t)
	fillBasics(t, s, "female")
	require.NoError(t, s.Advance(context.Background()))
	require.Equal(t, 1, s.StepIndex())

	require.NoError(t, s.Capture("pregnant", "Yes"))
	require.NoError(t, s.Advance(context.Background()))

	assert.Equal(t, navigator.StatusDisqualified, s.Status())
	dq := s.Disqualifiers()
	require.Len(t, dq, 1)
	assert.Equal(t, "pregnant", dq[0].FieldName)
	assert.Equal(t, "Treatment is not available during pregnancy.", dq[0].Message)

	ctx := context.Background()
	assert.ErrorIs(t, s.Advance(ctx), navigator.ErrTerminal)
	assert.ErrorIs(t, s.Retreat(), navigator.ErrTerminal)
	assert.ErrorIs(t, s.Capture("allergies", "x"), navigator.ErrTerminal)
	assert.ErrorIs(t, s.Submit(ctx), navigator.ErrNotCompleted)
	assert.Equal(t, navigator.StatusDisqualified, s.Status())
}

func TestSession_HiddenQuestionSkipped(t *testing.T) {
	rec := transport.NewRecorder()
	s := newSession(t, navigator.WithTransport(rec))
	fillBasics(t, s, "male")
	require.NoError(t, s.Advance(context.Background()))

	visible := s.VisibleFields()
	require.Len(t, visible, 1)
	assert.Equal(t, "allergies", visible[0].Name)

	require.NoError(t, s.Advance(context.Background()))
	assert.Equal(t, navigator.StatusCompleted, s.Status())

	require.NoError(t, s.Submit(context.Background()))
	records := rec.Records()
	require.Len(t, records, 1)
	assert.NotContains(t, records[0], "pregnant")
	assert.Equal(t, "male", records[0]["gender"])
	assert.Equal(t, "", records[0]["allergies"])
}

func TestSession_FlagsDoNotBlock(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Capture("email", "pat@example.com"))
	require.NoError(t, s.Capture("gender", "male"))
	require.NoError(t, s.Capture("smoker", "yes"))
	require.NoError(t, s.Advance(context.Background()))

	assert.Equal(t, 1, s.StepIndex())
	flags := s.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, "smoker", flags[0].FieldName)
	assert.Equal(t, model.ClassFlag, flags[0].Class)
}

func TestSession_RetreatAdvanceRoundTrip(t *testing.T) {
	s := newSession(t)
	fillBasics(t, s, "female")
	require.NoError(t, s.Advance(context.Background()))
	require.NoError(t, s.Capture("allergies", "penicillin"))

	before := s.Snapshot()
	require.NoError(t, s.Retreat())
	assert.Equal(t, 0, s.StepIndex())
	require.NoError(t, s.Advance(context.Background()))

	assert.Equal(t, before, s.Snapshot())
}

func TestSession_ReAdvanceReclassifies(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Capture("email", "pat@example.com"))
	require.NoError(t, s.Capture("gender", "female"))
	require.NoError(t, s.Capture("smoker", "yes"))
	require.NoError(t, s.Advance(context.Background()))
	require.Len(t, s.Flags(), 1)

	require.NoError(t, s.Retreat())
	require.NoError(t, s.Capture("smoker", "no"))
	require.NoError(t, s.Advance(context.Background()))
	assert.Empty(t, s.Flags())
}

func TestSession_CaptureAndPrefill(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.Capture("pregnant", "no"), navigator.ErrUnknownField)

	require.NoError(t, s.Prefill(model.Values{"email": "pre@example.com", "allergies": "none", "utm": "x"}))
	snap := s.Snapshot()
	assert.Equal(t, "pre@example.com", snap.Captured[0]["email"])
	assert.Equal(t, "none", snap.Captured[1]["allergies"])

	snap.Captured[0]["email"] = "mutated"
	assert.Equal(t, "pre@example.com", s.Snapshot().Captured[0]["email"])

	require.NoError(t, s.Capture("gender", "male"))
	require.NoError(t, s.Advance(context.Background()))
	assert.ErrorIs(t, s.Prefill(model.Values{"allergies": "dust"}), navigator.ErrPrefillAfterStart)
}

func completed(t *testing.T, options ...navigator.Option) *navigator.Session {
	t.Helper()
	s := newSession(t, options...)
	fillBasics(t, s, "female")
	require.NoError(t, s.Advance(context.Background()))
	require.NoError(t, s.Capture("pregnant", "no"))
	require.NoError(t, s.Advance(context.Background()))
	require.Equal(t, navigator.StatusCompleted, s.Status())
	return s
}

func TestSession_SubmitOnce(t *testing.T) {
	rec := transport.NewRecorder()
	var target aggregate.Target
	s := completed(t,
		navigator.WithTransport(rec, aggregate.WithRedirector(aggregate.RedirectFunc(func(_ context.Context, tgt aggregate.Target) error {
			target = tgt
			return nil
		}))),
		navigator.WithPassthrough(map[string]string{"utm_source": "ads"}),
	)

	require.NoError(t, s.Submit(context.Background()))
	assert.ErrorIs(t, s.Submit(context.Background()), navigator.ErrAlreadySubmitted)

	records := rec.Records()
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "pat@example.com", record["email"])
	assert.Equal(t, "no", record["pregnant"])
	assert.Equal(t, "ads", record["utm_source"])
	assert.Equal(t, "sess-1", record[aggregate.KeySessionID])
	assert.Equal(t, "GLP-1 Screening", record[aggregate.KeyFormTitle])
	assert.Equal(t, aggregate.Target{Category: "weight_loss", ConsultType: "async"}, target)
}

func TestSession_TransportFailureKeepsCompleted(t *testing.T) {
	rec := transport.NewRecorder()
	rec.FailWith(errors.New("503 service unavailable"))
	s := completed(t, navigator.WithTransport(rec))

	err := s.Submit(context.Background())
	var terr *aggregate.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, navigator.StatusCompleted, s.Status())

	first, ok := s.Record()
	require.True(t, ok)

	rec.FailWith(nil)
	require.NoError(t, s.Submit(context.Background()))

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, first[aggregate.KeySubmissionID], records[0][aggregate.KeySubmissionID])
}

func TestSession_RejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	slow := aggregate.TransportFunc(func(ctx context.Context, _ aggregate.Record) error {
		close(entered)
		<-release
		return nil
	})
	s := completed(t, navigator.WithTransport(slow))

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background()) }()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("transport was not called")
	}
	assert.ErrorIs(t, s.Submit(context.Background()), navigator.ErrSubmissionInFlight)
	assert.ErrorIs(t, s.Advance(context.Background()), navigator.ErrSubmissionInFlight)
	assert.True(t, s.Snapshot().Submitting)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, s.Snapshot().Submitted)
}

func TestSession_CancelledSubmitIsRetryable(t *testing.T) {
	blocking := aggregate.TransportFunc(func(ctx context.Context, _ aggregate.Record) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s := completed(t, navigator.WithTransport(blocking))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Submit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, navigator.StatusCompleted, s.Status())
	assert.False(t, s.Snapshot().Submitted)
}

func TestSession_IndependentSessions(t *testing.T) {
	form := newForm(t)
	a, err := navigator.New(form)
	require.NoError(t, err)
	b, err := navigator.New(form)
	require.NoError(t, err)

	require.NoError(t, a.Capture("email", "a@example.com"))
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Empty(t, b.Snapshot().Captured[0])
}

func formFrom(t *testing.T, raw string) model.FormModel {
	t.Helper()
	node, err := descriptor.Parse([]byte(raw), descriptor.FormatJSON)
	require.NoError(t, err)
	form, err := normalize.Normalize(node)
	require.NoError(t, err)
	return form
}

func TestSession_ClassifiesExactOptionText(t *testing.T) {
	form := formFrom(t, `{
		"title": "Age check",
		"basics": [
			{"text": "How old are you?", "fieldName": "age", "required": true,
			 "safe": ["18+"], "disqualify": ["<18"]}
		]
	}`)

	adult, err := navigator.New(form)
	require.NoError(t, err)
	require.NoError(t, adult.Capture("age", "18+"))
	require.NoError(t, adult.Advance(context.Background()))
	assert.Equal(t, navigator.StatusCompleted, adult.Status())
	assert.Empty(t, adult.Disqualifiers())

	minor, err := navigator.New(form)
	require.NoError(t, err)
	require.NoError(t, minor.Capture("age", "<18"))
	require.NoError(t, minor.Advance(context.Background()))
	assert.Equal(t, navigator.StatusDisqualified, minor.Status())
}

func TestSession_EarlierAnswerDoesNotSatisfyLaterStep(t *testing.T) {
	form := formFrom(t, `{
		"title": "Notes",
		"first": [{"text": "Notes", "fieldName": "notes"}],
		"second": [{"text": "Notes again *", "fieldName": "notes"}]
	}`)
	s, err := navigator.New(form)
	require.NoError(t, err)

	require.NoError(t, s.Capture("notes", "from step one"))
	require.NoError(t, s.Advance(context.Background()))

	err = s.Advance(context.Background())
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Step)
	assert.Equal(t, "notes", verr.Fields[0].Field)
	assert.Equal(t, navigator.StatusActive, s.Status())
	assert.Equal(t, 1, s.StepIndex())

	require.NoError(t, s.Capture("notes", "from step two"))
	require.NoError(t, s.Advance(context.Background()))
	assert.Equal(t, navigator.StatusCompleted, s.Status())
}

func TestSession_ShowConditionSeesEarlierSteps(t *testing.T) {
	s := newSession(t)
	fillBasics(t, s, "female")
	require.NoError(t, s.Advance(context.Background()))

	var names []string
	for _, field := range s.VisibleFields() {
		names = append(names, field.Name)
	}
	assert.Contains(t, names, "pregnant")
}

func TestSession_RejectedRecordIsNotResent(t *testing.T) {
	calls := 0
	rejecting := aggregate.TransportFunc(func(context.Context, aggregate.Record) error {
		calls++
		return errors.Join(aggregate.ErrRecordRejected, errors.New("gender: value is not one of the allowed values"))
	})
	s := completed(t, navigator.WithTransport(rejecting))

	first := s.Submit(context.Background())
	var terr *aggregate.TransportError
	require.ErrorAs(t, first, &terr)
	assert.False(t, terr.Retryable())

	again := s.Submit(context.Background())
	assert.ErrorIs(t, again, aggregate.ErrRecordRejected)
	assert.Equal(t, 1, calls)
	assert.False(t, s.Snapshot().Submitted)
	assert.Equal(t, navigator.StatusCompleted, s.Status())
}

func TestSession_ClassifiesSubmittedOptionValue(t *testing.T) {
	form := formFrom(t, `{
		"title": "History",
		"basics": [
			{"text": "Which conditions apply?", "fieldName": "conditions",
			 "options": ["None", "Type 1 Diabetes"], "disqualify": ["Type 1 Diabetes"]}
		]
	}`)
	s, err := navigator.New(form)
	require.NoError(t, err)

	require.NoError(t, s.Capture("conditions", "type_1_diabetes"))
	require.NoError(t, s.Advance(context.Background()))
	assert.Equal(t, navigator.StatusDisqualified, s.Status())
	require.Len(t, s.Disqualifiers(), 1)
	assert.Equal(t, []string{"Type 1 Diabetes"}, s.Disqualifiers()[0].Values)
}
