package es

import (
	"context"
	"errors"
)

// ErrNoEvents indicates an attempt to write a commit with zero events.
var ErrNoEvents = errors.New("es: commit has no events")

// EventWriter atomically persists a single Commit.
//
// Implementations must guarantee:
//   - Atomicity: either every event in the commit becomes visible, or none do.
//   - Optimistic concurrency: WriteCommit fails with a KindConcurrency
//     *Error if a commit with the same AggregateID and SequenceNumber
//     already exists.
//   - Durability before acknowledgement: once WriteCommit returns nil,
//     subsequent reads observe the commit.
//   - No reordering: successful commits for one aggregate become visible
//     in ascending SequenceNumber order.
type EventWriter interface {
	WriteCommit(ctx context.Context, tx DBTX, commit Commit) error
}

// EventPage is a page of events returned by an EventReader, plus the
// token to resume from if the stream was not fully drained.
type EventPage struct {
	Events            []SerializedEvent
	ContinuationToken ContinuationToken
}

// EventReader reads an aggregate's events in ascending sequence order,
// bounded by [minEventSeq, maxEventSeq], at most maxItems per page.
//
// Read begins a new range scan. ReadContinuation resumes a scan started
// by a prior call to either method, using the token it returned.
// Events is empty only when the range is exhausted, at which point
// ContinuationToken is also empty.
type EventReader interface {
	Read(ctx context.Context, tx DBTX, aggregateID AggregateID, minEventSeq, maxEventSeq int64, maxItems int) (EventPage, error)
	ReadContinuation(ctx context.Context, tx DBTX, token ContinuationToken) (EventPage, error)
}

// SnapshotWriter persists a SerializedSnapshot. Write is idempotent by
// (AggregateID, EventSequenceNumber): overwriting with a strictly
// greater EventSequenceNumber is permitted, but writing a snapshot whose
// EventSequenceNumber is less than or equal to one already stored must
// be either a no-op or a failure — never a regression of the stored
// checkpoint.
type SnapshotWriter interface {
	Write(ctx context.Context, tx DBTX, snapshot SerializedSnapshot) error
}

// SnapshotReader returns the highest-sequence SerializedSnapshot with
// EventSequenceNumber <= upToSequence, or the empty-snapshot sentinel
// (EmptySerializedSnapshot) if none exists. It never attempts to
// construct a domain default memento — that happens at the codec
// boundary (SnapshotSerializer.Deserialize) so the provider stays free
// of any dependency on domain memento types.
type SnapshotReader interface {
	Read(ctx context.Context, tx DBTX, aggregateID AggregateID, upToSequence int64) (SerializedSnapshot, error)
}
