package es

import (
	"context"
	"math"
)

// DefaultMaxItemsPerBatch is the default page-size hint given to an
// EventReader during rehydration when the caller does not override it
// via ReaderConfig.
const DefaultMaxItemsPerBatch = 100

// UpToLatest requests an unbounded historical read: "as of the most
// recent event this aggregate has".
const UpToLatest int64 = math.MaxInt64

// ReaderConfig configures an AggregateReader. Constructed via
// DefaultReaderConfig and mutated only before use, following this
// engine's configuration convention throughout: behavior is not hidden
// behind environment variables read by the library itself.
type ReaderConfig struct {
	// MaxItemsPerBatch is the page-size hint passed to the EventReader
	// on every Read call during rehydration.
	MaxItemsPerBatch int
}

// DefaultReaderConfig returns the default AggregateReader configuration.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{MaxItemsPerBatch: DefaultMaxItemsPerBatch}
}

// AggregateReader orchestrates snapshot_read -> event_replay -> fold:
// it loads the highest-sequence snapshot at or below UpToSequence,
// rehydrates an Aggregate from it, and then folds successive pages of
// events from the EventReader until either the stream is exhausted or
// UpToSequence is reached.
type AggregateReader[M any] struct {
	snapshotReader     SnapshotReader
	eventReader        EventReader
	snapshotSerializer SnapshotSerializer[M]
	folder             Folder[M]
	config             ReaderConfig
	logger             Logger
}

// ReaderOption configures optional AggregateReader behavior.
type ReaderOption[M any] func(*AggregateReader[M])

// WithReaderConfig overrides the default ReaderConfig.
func WithReaderConfig[M any](config ReaderConfig) ReaderOption[M] {
	return func(r *AggregateReader[M]) {
		r.config = config
	}
}

// WithReaderLogger attaches a Logger to the reader. Absent this option,
// the reader logs nothing (NoOpLogger), at zero overhead.
func WithReaderLogger[M any](logger Logger) ReaderOption[M] {
	return func(r *AggregateReader[M]) {
		r.logger = logger
	}
}

// NewAggregateReader constructs an AggregateReader. folder may be nil
// for the stateless variant, in which case rehydrated aggregates never
// have their memento populated.
func NewAggregateReader[M any](
	snapshotReader SnapshotReader,
	eventReader EventReader,
	snapshotSerializer SnapshotSerializer[M],
	folder Folder[M],
	opts ...ReaderOption[M],
) *AggregateReader[M] {
	r := &AggregateReader[M]{
		snapshotReader:     snapshotReader,
		eventReader:        eventReader,
		snapshotSerializer: snapshotSerializer,
		folder:             folder,
		config:             DefaultReaderConfig(),
		logger:             NoOpLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read rehydrates the aggregate identified by aggregateID as of
// upToSequence (pass UpToLatest for the most recent state).
// defaultMemento supplies the starting memento when no snapshot exists.
//
// The returned aggregate satisfies EventSequenceNumber() <=
// upToSequence, with equality iff at least that many events exist for
// this aggregate. Its Uncommitted buffer is always empty.
func (r *AggregateReader[M]) Read(ctx context.Context, tx DBTX, aggregateID AggregateID, upToSequence int64, defaultMemento func() M) (Aggregate[M], error) {
	ss, err := r.snapshotReader.Read(ctx, tx, aggregateID, upToSequence)
	if err != nil {
		return Aggregate[M]{}, Wrap(KindStorageUnavailable, "read snapshot", err)
	}

	snapshot, err := r.snapshotSerializer.Deserialize(ss, defaultMemento)
	if err != nil {
		return Aggregate[M]{}, err
	}

	aggregate := FromSnapshot(snapshot, r.folder)
	r.logger.Debug(ctx, "aggregate: loaded snapshot",
		"aggregate_id", aggregateID, "commit_seq", aggregate.CommitSequenceNumber(), "event_seq", aggregate.EventSequenceNumber())

	if aggregate.EventSequenceNumber() >= upToSequence {
		return aggregate, nil
	}

	maxItems := r.config.MaxItemsPerBatch
	if maxItems <= 0 {
		maxItems = DefaultMaxItemsPerBatch
	}

	page, err := r.eventReader.Read(ctx, tx, aggregateID, aggregate.EventSequenceNumber()+1, upToSequence, maxItems)
	if err != nil {
		return Aggregate[M]{}, Wrap(KindStorageUnavailable, "read events", err)
	}

	for {
		for _, ev := range page.Events {
			aggregate, err = aggregate.FoldEvent(ev)
			if err != nil {
				return Aggregate[M]{}, err
			}
		}

		if page.ContinuationToken.IsEmpty() {
			break
		}
		page, err = r.eventReader.ReadContinuation(ctx, tx, page.ContinuationToken)
		if err != nil {
			return Aggregate[M]{}, Wrap(KindStorageUnavailable, "read events continuation", err)
		}
	}

	r.logger.Debug(ctx, "aggregate: rehydrated",
		"aggregate_id", aggregateID, "commit_seq", aggregate.CommitSequenceNumber(), "event_seq", aggregate.EventSequenceNumber())

	return aggregate, nil
}
