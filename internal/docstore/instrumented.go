package docstore

import (
	"context"
	"errors"
	"time"
)

// Observer receives one call per store operation.
type Observer func(op, outcome string, elapsed time.Duration)

// Outcome classifies an operation error for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

type instrumentedStore struct {
	next    Store
	timeout time.Duration
	observe Observer
}

// Instrument wraps next so that every call runs under timeout (when positive) and is
// reported to observe (when non-nil).
func Instrument(next Store, timeout time.Duration, observe Observer) Store {
	return &instrumentedStore{next: next, timeout: timeout, observe: observe}
}

func (s *instrumentedStore) begin(ctx context.Context) (context.Context, context.CancelFunc, time.Time) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return ctx, cancel, time.Now()
	}
	return ctx, func() {}, time.Now()
}

func (s *instrumentedStore) end(op string, started time.Time, err error) {
	if s.observe != nil {
		s.observe(op, Outcome(err), time.Since(started))
	}
}

func (s *instrumentedStore) Get(ctx context.Context, scope Scope, id string) (*Document, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	doc, err := s.next.Get(ctx, scope, id)
	s.end("get", started, err)
	return doc, err
}

func (s *instrumentedStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	docs, err := s.next.List(ctx, scope)
	s.end("list", started, err)
	return docs, err
}

func (s *instrumentedStore) Add(ctx context.Context, scope Scope, fields Fields) (*Document, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	doc, err := s.next.Add(ctx, scope, fields)
	s.end("add", started, err)
	return doc, err
}

func (s *instrumentedStore) Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	doc, err := s.next.Set(ctx, scope, id, fields)
	s.end("set", started, err)
	return doc, err
}

func (s *instrumentedStore) Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	doc, err := s.next.Update(ctx, scope, id, fields, expectedVersion)
	s.end("update", started, err)
	return doc, err
}

func (s *instrumentedStore) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	deleted, err := s.next.Delete(ctx, scope, id)
	s.end("delete", started, err)
	return deleted, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	ctx, cancel, started := s.begin(ctx)
	defer cancel()
	err := s.next.Ping(ctx)
	s.end("ping", started, err)
	return err
}

func (s *instrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
