package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-screener/pkg/logger"
)

// ErrNoTransport is returned when a Submitter has nothing to deliver to.
var ErrNoTransport = errors.New("aggregate: no transport configured")

// ErrRecordRejected marks a delivery failure that resending the same record
// cannot fix, such as a schema violation or a 4xx response.
var ErrRecordRejected = errors.New("aggregate: record rejected")

// Transport delivers a record to the remote endpoint.
type Transport interface {
	Deliver(ctx context.Context, record Record) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, record Record) error

// Deliver calls fn.
func (fn TransportFunc) Deliver(ctx context.Context, record Record) error {
	return fn(ctx, record)
}

// Redirector routes the respondent once the record has been delivered.
type Redirector interface {
	Redirect(ctx context.Context, target Target) error
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context, target Target) error

// Redirect calls fn.
func (fn RedirectFunc) Redirect(ctx context.Context, target Target) error {
	return fn(ctx, target)
}

// TransportError reports a failed delivery. The record was not accepted; it
// may be submitted again unless Retryable reports false.
type TransportError struct {
	SubmissionID string
	Err          error
}

func (e *TransportError) Error() string {
	if e.SubmissionID == "" {
		return fmt.Sprintf("aggregate: delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("aggregate: delivery of %s failed: %v", e.SubmissionID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether delivering the same record again may succeed.
func (e *TransportError) Retryable() bool {
	return !errors.Is(e.Err, ErrRecordRejected)
}

// RedirectError reports a redirect failure after a successful delivery.
type RedirectError struct {
	Target Target
	Err    error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("aggregate: redirect to %s/%s failed: %v", e.Target.Category, e.Target.ConsultType, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// Submitter hands records to the transport and then to the redirector.
type Submitter struct {
	transport  Transport
	redirector Redirector
	log        logger.Logger
}

// SubmitterOption customises a Submitter.
type SubmitterOption func(*Submitter)

// WithRedirector sets the redirect collaborator.
func WithRedirector(r Redirector) SubmitterOption {
	return func(s *Submitter) {
		s.redirector = r
	}
}

// WithSubmitLogger attaches a logger.
func WithSubmitLogger(log logger.Logger) SubmitterOption {
	return func(s *Submitter) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSubmitter constructs a Submitter over transport.
func NewSubmitter(transport Transport, options ...SubmitterOption) *Submitter {
	s := &Submitter{transport: transport, log: logger.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit delivers record exactly once. Delivery failures are returned as
// *TransportError; redirect failures as *RedirectError.
func (s *Submitter) Submit(ctx context.Context, record Record) error {
	if s == nil || s.transport == nil {
		return ErrNoTransport
	}
	id := record.String(KeySubmissionID)
	if err := s.transport.Deliver(ctx, record); err != nil {
		s.log.Error("submission delivery failed", "submission_id", id, "error", err)
		return &TransportError{SubmissionID: id, Err: err}
	}
	s.log.Info("submission delivered", "submission_id", id)

	if s.redirector == nil {
		return nil
	}
	target := record.Target()
	if err := s.redirector.Redirect(ctx, target); err != nil {
		return &RedirectError{Target: target, Err: err}
	}
	return nil
}
