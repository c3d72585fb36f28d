package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/classify"
	"github.com/goliatone/go-screener/pkg/logger"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/render"
	"github.com/goliatone/go-screener/pkg/validation"
	"github.com/goliatone/go-screener/pkg/visibility"
)

// Status is the coarse session state.
type Status string

const (
	StatusActive       Status = "active"
	StatusDisqualified Status = "disqualified"
	StatusCompleted    Status = "completed"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDisqualified || s == StatusCompleted
}

// Session owns the state of one respondent.
type Session struct {
	mu sync.Mutex

	id        string
	form      model.FormModel
	tree      model.Tree
	questions map[string]model.Question
	inputs    []map[string]struct{}

	renderer    *render.Renderer
	validator   *validation.Engine
	evaluator   visibility.Evaluator
	builder     *aggregate.Builder
	submitter   *aggregate.Submitter
	passthrough map[string]string
	log         logger.Logger

	status     Status
	step       int
	started    bool
	captured   []model.Values
	committed  []model.Values
	shown      [][]model.FieldDescription
	outcomes   [][]classify.Outcome
	submitting bool
	submitted  bool
	rejected   error
	record     aggregate.Record
}

// Option customises a Session.
type Option func(*Session)

// WithID sets the session id. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(s *Session) {
		if id = strings.TrimSpace(id); id != "" {
			s.id = id
		}
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Session) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithValidator replaces the default validation engine. The session's
// visibility evaluator is applied separately.
func WithValidator(v *validation.Engine) Option {
	return func(s *Session) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithEvaluator replaces the show condition evaluator.
func WithEvaluator(ev visibility.Evaluator) Option {
	return func(s *Session) {
		if ev != nil {
			s.evaluator = ev
		}
	}
}

// WithBuilder sets the record builder, typically carrying sync-only states.
func WithBuilder(b *aggregate.Builder) Option {
	return func(s *Session) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithSubmitter sets the submitter used by Submit.
func WithSubmitter(sub *aggregate.Submitter) Option {
	return func(s *Session) {
		if sub != nil {
			s.submitter = sub
		}
	}
}

// WithTransport is shorthand for WithSubmitter(aggregate.NewSubmitter(t)).
func WithTransport(t aggregate.Transport, options ...aggregate.SubmitterOption) Option {
	return func(s *Session) {
		if t != nil {
			s.submitter = aggregate.NewSubmitter(t, options...)
		}
	}
}

// WithPassthrough attaches context fields carried into the record and made
// available to show conditions as extras.
func WithPassthrough(fields map[string]string) Option {
	return func(s *Session) {
		s.passthrough = aggregate.MergeContext(s.passthrough, aggregate.SortedContext(fields)...)
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// New starts a session over a private copy of form.
func New(form model.FormModel, options ...Option) (*Session, error) {
	if len(form.Sections) == 0 {
		return nil, errors.New("navigator: form has no sections")
	}

	s := &Session{
		form:     form.Clone(),
		renderer: render.New(),
		log:      logger.Nop(),
		status:   StatusActive,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.evaluator == nil {
		s.evaluator = visibility.NewRules(visibility.FieldNames(s.form))
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	s.validator = s.validator.With(validation.WithVisibility(s.evaluator))
	if s.builder == nil {
		s.builder = aggregate.NewBuilder(aggregate.WithLogger(s.log))
	}
	if s.submitter == nil {
		s.submitter = aggregate.NewSubmitter(nil)
	}
	s.log = s.log.With("session", s.id)

	s.tree = s.renderer.Form(s.form)
	s.questions = make(map[string]model.Question)
	for _, q := range s.form.Questions() {
		s.questions[q.ID] = q
	}

	n := len(s.tree.Steps)
	s.inputs = make([]map[string]struct{}, n)
	s.captured = make([]model.Values, n)
	s.committed = make([]model.Values, n)
	s.shown = make([][]model.FieldDescription, n)
	s.outcomes = make([][]classify.Outcome, n)
	for i, step := range s.tree.Steps {
		s.inputs[i] = map[string]struct{}{}
		for _, field := range step.Fields {
			for _, input := range field.Inputs() {
				s.inputs[i][input] = struct{}{}
			}
		}
		s.captured[i] = model.Values{}
	}

	s.log.Debug("session started", "title", s.form.Title, "steps", n, "mode", s.form.Mode())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Tree returns a copy of the rendered field tree.
func (s *Session) Tree() model.Tree {
	return deepcopy.Copy(s.tree).(model.Tree)
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StepIndex returns the zero-based current step.
func (s *Session) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Steps returns the number of steps.
func (s *Session) Steps() int { return len(s.tree.Steps) }

// Step returns a copy of the current rendered step.
func (s *Session) Step() model.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepcopy.Copy(s.tree.Steps[s.step]).(model.Step)
}

// VisibleFields returns the current step's fields whose show condition holds
// for the values captured so far.
func (s *Session) VisibleFields() []model.FieldDescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, _ := s.visible(s.step, s.context(s.step))
	return deepcopy.Copy(fields).([]model.FieldDescription)
}

// Capture records the answer for one input of the current step.
func (s *Session) Capture(input string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.inputs[s.step][input]; !ok {
		return fmt.Errorf("%w: %q is not on step %d", ErrUnknownField, input, s.step)
	}
	s.captured[s.step][input] = normalizeValue(value)
	return nil
}

// Prefill seeds captured values on every step rendering the given inputs.
// Unknown keys are ignored. It is only allowed before the first Advance.
func (s *Session) Prefill(values model.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if s.started {
		return ErrPrefillAfterStart
	}
	for key, value := range values {
		placed := false
		for i := range s.inputs {
			if _, ok := s.inputs[i][key]; ok {
				s.captured[i][key] = normalizeValue(value)
				placed = true
			}
		}
		if !placed {
			s.log.Debug("prefill key ignored", "key", key)
		}
	}
	return nil
}

// Advance validates the current step and moves the session forward. A
// validation failure returns *validation.Error and leaves the state as it
// was.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	step := s.step
	fields := s.tree.Steps[step].Fields
	vctx := s.context(step)

	if err := s.validator.ValidateContext(fields, vctx); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			verr.Step = step
			s.log.Debug("step rejected", "step", step, "failures", len(verr.Fields))
		}
		return err
	}

	shown, _ := s.visible(step, vctx)
	committed := model.Values{}
	for _, field := range shown {
		for _, input := range field.Inputs() {
			value, ok := s.captured[step][input]
			switch {
			case ok:
				committed[input] = value
			case field.Kind.MultiChoice():
				committed[input] = []string{}
			default:
				committed[input] = ""
			}
		}
	}
	s.committed[step] = committed.Clone()
	s.shown[step] = shown
	s.started = true

	outcomes, disqualified := s.classify(step, shown, committed)
	s.outcomes[step] = outcomes

	switch {
	case disqualified:
		s.status = StatusDisqualified
		s.log.Info("session disqualified", "step", step)
	case step == len(s.tree.Steps)-1:
		s.status = StatusCompleted
		s.log.Info("session completed", "steps", len(s.tree.Steps))
	default:
		s.step++
		s.log.Debug("step advanced", "from", step, "to", s.step)
	}
	return nil
}

// Retreat moves back one step, keeping every captured value.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if s.step == 0 {
		return ErrFirstStep
	}
	s.step--
	s.log.Debug("step retreated", "to", s.step)
	return nil
}

// Submit builds the record on first call and delivers it. After a retryable
// *aggregate.TransportError the session stays Completed and Submit may be
// called again with the same record; a rejected record returns the same
// error on every later call.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.submitting:
		s.mu.Unlock()
		return ErrSubmissionInFlight
	case s.status != StatusCompleted:
		s.mu.Unlock()
		return ErrNotCompleted
	case s.submitted:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	case s.rejected != nil:
		s.mu.Unlock()
		return s.rejected
	}
	if s.record == nil {
		record, err := s.builder.Build(s.input())
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.record = record
	}
	record := s.record.Clone()
	submitter := s.submitter
	s.submitting = true
	s.mu.Unlock()

	err := submitter.Submit(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	var terr *aggregate.TransportError
	switch {
	case err == nil:
		s.submitted = true
	case errors.As(err, &terr):
		if !terr.Retryable() {
			s.rejected = err
		}
	case !errors.Is(err, aggregate.ErrNoTransport):
		s.submitted = true
	}
	return err
}

// Record returns a copy of the built record, if Submit has built one.
func (s *Session) Record() (aggregate.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, false
	}
	return s.record.Clone(), true
}

// Flags returns the flagged answers of every committed step.
func (s *Session) Flags() []classify.Outcome {
	return s.filter(model.ClassFlag)
}

// Disqualifiers returns the disqualifying answers that ended the session.
func (s *Session) Disqualifiers() []classify.Outcome {
	return s.filter(model.ClassDisqualify)
}

func (s *Session) filter(class model.Classification) []classify.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []classify.Outcome
	for _, step := range s.outcomes {
		for _, outcome := range step {
			if outcome.Class == class {
				out = append(out, outcome)
			}
		}
	}
	return deepcopy.Copy(out).([]classify.Outcome)
}

func (s *Session) writable() error {
	if s.submitting {
		return ErrSubmissionInFlight
	}
	if s.status.Terminal() {
		return ErrTerminal
	}
	return nil
}

// context exposes the current step's captured values to validation and
// show conditions; earlier committed answers only feed show conditions.
func (s *Session) context(step int) visibility.Context {
	prior := model.Values{}
	for i := 0; i < step; i++ {
		for key, value := range s.committed[i] {
			if _, ok := prior[key]; !ok {
				prior[key] = value
			}
		}
	}
	extras := make(map[string]any, len(s.passthrough))
	for key, value := range s.passthrough {
		extras[key] = value
	}
	return visibility.Context{Values: s.captured[step].Clone(), Prior: prior, Extras: extras}
}

func (s *Session) visible(step int, ctx visibility.Context) ([]model.FieldDescription, error) {
	var (
		out  []model.FieldDescription
		errs []error
	)
	for _, field := range s.tree.Steps[step].Fields {
		ok, err := visibility.Visible(s.evaluator, field, ctx)
		if err != nil {
			s.log.Warn("show condition failed, keeping field visible", "field", field.Name, "rule", field.ShowCondition, "error", err)
			errs = append(errs, err)
		}
		if ok {
			out = append(out, field)
		}
	}
	return out, errors.Join(errs...)
}

func (s *Session) classify(step int, fields []model.FieldDescription, values model.Values) ([]classify.Outcome, bool) {
	var (
		outcomes     []classify.Outcome
		disqualified bool
	)
	for _, field := range fields {
		q, ok := s.questions[field.QuestionID]
		if !ok || q.Rules.Empty() {
			continue
		}
		answers := rawAnswers(field, values.List(field.Name))
		if len(answers) == 0 {
			continue
		}
		outcome := classify.Answer(q, answers)
		outcomes = append(outcomes, outcome)
		switch outcome.Class {
		case model.ClassFlag:
			s.log.Warn("answer flagged", "step", step, "field", field.Name, "values", answers)
		case model.ClassDisqualify:
			s.log.Info("answer disqualifies", "step", step, "field", field.Name, "values", answers)
			disqualified = true
		}
	}
	return outcomes, disqualified
}

// rawAnswers maps submitted option values back to the option text the rule
// sets were written against.
func rawAnswers(field model.FieldDescription, answers []string) []string {
	if len(field.Options) == 0 || len(answers) == 0 {
		return answers
	}
	out := make([]string, len(answers))
	for i, answer := range answers {
		out[i] = answer
		for _, option := range field.Options {
			if option.Value == strings.TrimSpace(answer) {
				out[i] = option.Raw
				break
			}
		}
	}
	return out
}

func (s *Session) input() aggregate.Input {
	steps := make([]aggregate.Fragment, 0, len(s.tree.Steps))
	for i := range s.tree.Steps {
		steps = append(steps, aggregate.Fragment{
			Step:   i,
			Fields: s.shown[i],
			Values: s.committed[i].Clone(),
		})
	}
	return aggregate.Input{
		Title:       s.form.Title,
		Category:    s.form.Category,
		ConsultType: s.form.ConsultType,
		SessionID:   s.id,
		Steps:       steps,
		Context:     aggregate.MergeContext(s.passthrough),
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}
