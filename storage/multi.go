package storage

import (
	"context"
	"errors"
	"time"

	"cluster-pricing/utils"
)

// MultiSink writes every table to all of its sinks. The write fails if any
// sink fails; the other sinks are still attempted.
type MultiSink []RecordSink

func (m MultiSink) WriteTable(ctx context.Context, t Table) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteTable(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RetryingSink retries failed table writes with quadratic backoff
type RetryingSink struct {
	Sink     RecordSink
	Attempts int
	Backoff  time.Duration
	Logger   *utils.Logger
}

func (r *RetryingSink) WriteTable(ctx context.Context, t Table) error {
	return utils.RetryWithBackoff(ctx, r.Attempts, r.Backoff, func() error {
		return r.Sink.WriteTable(ctx, t)
	}, r.Logger)
}
