package audit

import (
	"context"
	"time"
)

// Service is a single-writer-many-readers append log. Append never fails
// silently – a write failure propagates, since an unaudited high-risk action
// is a correctness violation. The read path never blocks the writer.
type Service interface {
	// Append stamps the entry (sequence, timestamp, chained digest) and
	// persists it. Entries are never edited or deleted afterwards.
	Append(ctx context.Context, entry *Entry) error

	// Query returns entries matching the options in ascending timestamp
	// order.
	Query(ctx context.Context, options ...QueryOption) ([]*Entry, error)

	// Verify walks the hash chain and returns an error on the first entry
	// whose digest does not match its recomputed value.
	Verify(ctx context.Context) error
}

// Query holds resolved filter criteria; store implementations apply it via
// Matches.
type Query struct {
	operationID string
	from        time.Time
	to          time.Time
}

// QueryOption narrows a Query call.
type QueryOption func(*Query)

// WithOperationID restricts results to a single operation.
func WithOperationID(id string) QueryOption {
	return func(q *Query) { q.operationID = id }
}

// WithTimeRange restricts results to entries with from <= timestamp <= to.
// Either bound may be zero to leave that side open.
func WithTimeRange(from, to time.Time) QueryOption {
	return func(q *Query) {
		q.from = from
		q.to = to
	}
}

// NewQuery resolves options into a Query.
func NewQuery(options []QueryOption) *Query {
	q := &Query{}
	for _, option := range options {
		option(q)
	}
	return q
}

// Matches reports whether the entry satisfies every filter.
func (q *Query) Matches(entry *Entry) bool {
	if q.operationID != "" && entry.OperationID != q.operationID {
		return false
	}
	if !q.from.IsZero() && entry.Timestamp.Before(q.from) {
		return false
	}
	if !q.to.IsZero() && entry.Timestamp.After(q.to) {
		return false
	}
	return true
}
