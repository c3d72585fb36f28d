// Package webhook delivers submission records as JSON over HTTP.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/contract"
	"github.com/goliatone/go-screener/pkg/logger"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRetryWait = 500 * time.Millisecond
	maxBackoff       = 10 * time.Second

	// IdempotencyHeader carries the submission id so receivers can drop
	// duplicate deliveries.
	IdempotencyHeader = "Idempotency-Key"
)

// ErrInvalidEndpoint is returned by New for unusable endpoints.
var ErrInvalidEndpoint = errors.New("webhook: invalid endpoint")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("webhook: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("webhook: unexpected status %d: %s", e.Code, body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Is makes final statuses match aggregate.ErrRecordRejected.
func (e *StatusError) Is(target error) bool {
	return target == aggregate.ErrRecordRejected && !e.Retryable()
}

// Transport posts records to a fixed endpoint.
type Transport struct {
	endpoint   string
	httpClient *http.Client
	client     *resty.Client
	timeout    time.Duration
	retries    uint64
	retryWait  time.Duration
	schema     *openapi3.Schema
	headers    map[string]string
	log        logger.Logger
}

// Option customises a Transport.
type Option func(*Transport)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithTimeout bounds every attempt.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithRetries allows n additional attempts after a retryable failure, backing
// off exponentially from wait.
func WithRetries(n int, wait time.Duration) Option {
	return func(t *Transport) {
		if n > 0 {
			t.retries = uint64(n)
		}
		if wait > 0 {
			t.retryWait = wait
		}
	}
}

// WithSchema validates every record against schema before sending it.
func WithSchema(schema *openapi3.Schema) Option {
	return func(t *Transport) {
		t.schema = schema
	}
}

// WithHeader adds a static request header.
func WithHeader(name, value string) Option {
	return func(t *Transport) {
		if name = strings.TrimSpace(name); name != "" {
			t.headers[name] = value
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Logger) Option {
	return func(t *Transport) {
		if log != nil {
			t.log = log
		}
	}
}

// New constructs a Transport posting to endpoint.
func New(endpoint string, options ...Option) (*Transport, error) {
	endpoint = strings.TrimSpace(endpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	t := &Transport{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		retryWait:  defaultRetryWait,
		headers:    map[string]string{},
		log:        logger.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	t.client = resty.NewWithClient(t.httpClient).
		SetTimeout(t.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeaders(t.headers)
	return t, nil
}

// Endpoint returns the configured URL.
func (t *Transport) Endpoint() string { return t.endpoint }

// Deliver posts record, retrying transient failures as configured. Schema
// violations are never sent and, like final statuses, match
// aggregate.ErrRecordRejected.
func (t *Transport) Deliver(ctx context.Context, record aggregate.Record) error {
	if err := contract.Validate(ctx, t.schema, record); err != nil {
		return fmt.Errorf("%w: %w", aggregate.ErrRecordRejected, err)
	}

	id := record.String(aggregate.KeySubmissionID)
	backoff := retry.WithMaxRetries(t.retries,
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(t.retryWait)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := t.post(ctx, id, record)
		if err == nil {
			t.log.Debug("webhook delivered", "submission_id", id, "attempt", attempt)
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		var status *StatusError
		if errors.As(err, &status) && !status.Retryable() {
			return err
		}
		t.log.Warn("webhook attempt failed", "submission_id", id, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

func (t *Transport) post(ctx context.Context, id string, record aggregate.Record) error {
	req := t.client.R().SetContext(ctx).SetBody(record)
	if id != "" {
		req.SetHeader(IdempotencyHeader, id)
	}
	resp, err := req.Post(t.endpoint)
	if err != nil {
		return fmt.Errorf("webhook: post %s: %w", t.endpoint, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

var _ aggregate.Transport = (*Transport)(nil)
