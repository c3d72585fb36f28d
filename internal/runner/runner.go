// Package runner walks a navigator session through a prompt driver and shows
// the matching outcome screen.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-screener/internal/prompt"
	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/classify"
	"github.com/goliatone/go-screener/pkg/logger"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/navigator"
	"github.com/goliatone/go-screener/pkg/render"
	"github.com/goliatone/go-screener/pkg/screens"
	"github.com/goliatone/go-screener/pkg/validation"
)

const (
	actionNext = "Next"
	actionBack = "Back"
)

// Result summarises a finished run.
type Result struct {
	Status        navigator.Status
	Record        aggregate.Record
	Disqualifiers []classify.Outcome
	Flags         []classify.Outcome
}

// Runner drives sessions interactively.
type Runner struct {
	driver   prompt.Driver
	screens  *screens.Engine
	attempts int
	log      logger.Logger
}

// Option customises a Runner.
type Option func(*Runner)

// WithScreens replaces the default outcome screens.
func WithScreens(engine *screens.Engine) Option {
	return func(r *Runner) {
		if engine != nil {
			r.screens = engine
		}
	}
}

// WithSubmitAttempts caps how often the respondent may retry a failed
// delivery.
func WithSubmitAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// New constructs a Runner over driver.
func New(driver prompt.Driver, options ...Option) (*Runner, error) {
	if driver == nil {
		return nil, errors.New("runner: prompt driver is required")
	}
	r := &Runner{driver: driver, attempts: 3, log: logger.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.screens == nil {
		engine, err := screens.New()
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		r.screens = engine
	}
	return r, nil
}

// Run asks every step until the session ends, then submits a completed
// session.
func (r *Runner) Run(ctx context.Context, s *navigator.Session) (Result, error) {
	tree := s.Tree()
	var failed map[string][]string

	for s.Status() == navigator.StatusActive {
		step := s.Step()
		index := s.StepIndex()
		if failed == nil {
			if err := r.driver.Info(ctx, heading(tree, step, s.Steps())); err != nil {
				return Result{}, err
			}
		}

		if err := r.askStep(ctx, s, failed); err != nil {
			return Result{}, err
		}

		if index > 0 && failed == nil {
			choice, err := r.driver.Select(ctx, prompt.SelectConfig{
				Message: "Continue?",
				Options: []string{actionNext, actionBack},
			})
			if err != nil {
				return Result{}, err
			}
			if choice == 1 {
				if err := s.Retreat(); err != nil {
					return Result{}, err
				}
				continue
			}
		}

		err := s.Advance(ctx)
		var verr *validation.Error
		switch {
		case err == nil:
			failed = nil
		case errors.As(err, &verr):
			failed = render.MapErrors(step.Fields, verr.Messages()).Fields
			for _, fe := range verr.Fields {
				if err := r.driver.Info(ctx, fmt.Sprintf("  ! %s: %s", fe.Input, fe.Message)); err != nil {
					return Result{}, err
				}
			}
		default:
			return Result{}, err
		}
	}

	result := Result{
		Status:        s.Status(),
		Disqualifiers: s.Disqualifiers(),
		Flags:         s.Flags(),
	}

	if result.Status == navigator.StatusDisqualified {
		messages := make([]string, 0, len(result.Disqualifiers))
		for _, dq := range result.Disqualifiers {
			if msg := strings.TrimSpace(dq.Message); msg != "" {
				messages = append(messages, msg)
			}
		}
		return result, r.show(ctx, screens.Disqualified, screens.Data{
			Title:    tree.Title,
			Category: tree.Category,
			Messages: messages,
		})
	}

	err := r.submit(ctx, s, tree)
	result.Record, _ = s.Record()
	return result, err
}

func (r *Runner) askStep(ctx context.Context, s *navigator.Session, failed map[string][]string) error {
	step := s.Step()
	for _, field := range step.Fields {
		if failed != nil && len(failed[field.Name]) == 0 {
			continue
		}
		if !visible(s, field.Name) {
			continue
		}
		current := s.Snapshot().Captured[s.StepIndex()]
		values, err := prompt.Ask(ctx, r.driver, field, current)
		if err != nil {
			return err
		}
		for input, value := range values {
			if err := s.Capture(input, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) submit(ctx context.Context, s *navigator.Session, tree model.Tree) error {
	for attempt := 1; ; attempt++ {
		err := s.Submit(ctx)
		var terr *aggregate.TransportError
		switch {
		case err == nil:
			record, _ := s.Record()
			return r.show(ctx, screens.Completed, screens.Data{
				Title:        tree.Title,
				Category:     tree.Category,
				SubmissionID: record.String(aggregate.KeySubmissionID),
				Target:       record.Target(),
			})
		case errors.As(err, &terr):
			r.log.Warn("submission failed", "attempt", attempt, "error", err)
			if showErr := r.show(ctx, screens.Failed, screens.Data{Title: tree.Title, Error: terr.Err.Error()}); showErr != nil {
				return showErr
			}
			if !terr.Retryable() || attempt >= r.attempts {
				return err
			}
			again, askErr := r.driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Try submitting again?", Default: true})
			if askErr != nil {
				return askErr
			}
			if !again {
				return err
			}
		default:
			return err
		}
	}
}

func (r *Runner) show(ctx context.Context, kind screens.Kind, data screens.Data) error {
	out, err := r.screens.Render(kind, data)
	if err != nil {
		return err
	}
	return r.driver.Info(ctx, strings.TrimRight(out, "\n"))
}

func heading(tree model.Tree, step model.Step, total int) string {
	if total <= 1 {
		return tree.Title
	}
	return fmt.Sprintf("%s (%d/%d): %s", tree.Title, step.Index+1, total, step.Title)
}

func visible(s *navigator.Session, name string) bool {
	for _, field := range s.VisibleFields() {
		if field.Name == name {
			return true
		}
	}
	return false
}
