// Package transport provides local aggregate.Transport implementations. The
// webhook subpackage delivers records over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/goliatone/go-screener/pkg/aggregate"
)

// Writer encodes each record as indented JSON to an io.Writer. The CLI uses it
// when no endpoint is configured.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer over out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Deliver writes record.
func (w *Writer) Deliver(ctx context.Context, record aggregate.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("transport writer: encode record: %w", err)
	}
	return nil
}

// Recorder keeps every delivered record in memory.
type Recorder struct {
	mu      sync.Mutex
	records []aggregate.Record
	fail    error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes subsequent deliveries return err. A nil err restores success.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// Deliver stores a copy of record.
func (r *Recorder) Deliver(ctx context.Context, record aggregate.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.records = append(r.records, record.Clone())
	return nil
}

// Records returns the delivered records in order.
func (r *Recorder) Records() []aggregate.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]aggregate.Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

var (
	_ aggregate.Transport = (*Writer)(nil)
	_ aggregate.Transport = (*Recorder)(nil)
)
