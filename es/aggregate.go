package es

import (
	"context"
	"fmt"
)

// Folder decodes a SerializedEvent's payload and folds it into a
// memento of type M. Domain code supplies a Folder either by hand or
// via the generated dispatch table in es/eventmap (see Package doc).
// An Aggregate constructed with a nil Folder is the stateless variant:
// sequence numbers still advance but the memento is never touched.
type Folder[M any] interface {
	Fold(memento M, event SerializedEvent) (M, error)
}

// Aggregate is the kernel's value type: an immutable snapshot of one
// aggregate instance's position in its event stream, plus any events
// applied but not yet committed. Every operation below returns a new
// Aggregate value; the receiver is never mutated.
type Aggregate[M any] struct {
	aggregateID  AggregateID
	partitionKey PartitionKey
	commitSeq    int64
	eventSeq     int64
	uncommitted  []SerializedEvent
	memento      M
	folder       Folder[M]
}

// NewAggregate constructs a fresh aggregate at (commitSeq=-1,
// eventSeq=-1) with an empty uncommitted buffer and the zero value of
// M as its memento. folder may be nil for the stateless variant.
func NewAggregate[M any](aggregateID AggregateID, partitionKey PartitionKey, folder Folder[M]) Aggregate[M] {
	return Aggregate[M]{
		aggregateID:  aggregateID,
		partitionKey: partitionKey,
		commitSeq:    EmptySequenceNumber,
		eventSeq:     EmptySequenceNumber,
		folder:       folder,
	}
}

// FromSnapshot constructs an aggregate positioned at the given
// snapshot's sequence numbers, with the snapshot's memento as its
// starting state and an empty uncommitted buffer. An empty snapshot
// (CommitSequenceNumber == EventSequenceNumber == -1) yields the same
// result as NewAggregate with the snapshot's Memento value.
func FromSnapshot[M any](snapshot Snapshot[M], folder Folder[M]) Aggregate[M] {
	return Aggregate[M]{
		aggregateID:  snapshot.AggregateID,
		partitionKey: snapshot.PartitionKey,
		commitSeq:    snapshot.CommitSequenceNumber,
		eventSeq:     snapshot.EventSequenceNumber,
		memento:      snapshot.Memento,
		folder:       folder,
	}
}

// AggregateID returns the identifier this aggregate instance was
// constructed with.
func (a Aggregate[M]) AggregateID() AggregateID { return a.aggregateID }

// PartitionKey returns the storage partition this aggregate routes to.
func (a Aggregate[M]) PartitionKey() PartitionKey { return a.partitionKey }

// CommitSequenceNumber returns the index of the last durable commit, or
// -1 if none has been written yet.
func (a Aggregate[M]) CommitSequenceNumber() int64 { return a.commitSeq }

// EventSequenceNumber returns the index of the last event attached to
// this aggregate, committed or uncommitted, or -1 if none.
func (a Aggregate[M]) EventSequenceNumber() int64 { return a.eventSeq }

// Memento returns the current folded domain state. For a stateless
// aggregate (nil Folder) this is always the zero value of M.
func (a Aggregate[M]) Memento() M { return a.memento }

// Uncommitted returns the events applied but not yet committed. The
// returned slice is owned by the caller to read only; appending to it
// does not affect the aggregate.
func (a Aggregate[M]) Uncommitted() []SerializedEvent {
	return a.uncommitted
}

// IsDirty reports whether this aggregate holds uncommitted events.
func (a Aggregate[M]) IsDirty() bool {
	return len(a.uncommitted) > 0
}

// ApplyEvent validates ev against the aggregate's current position,
// serializes it with serializer, folds its payload into the memento
// (if a Folder is configured), and returns a new aggregate with
// EventSequenceNumber advanced by one and ev appended to Uncommitted.
//
// Fails with KindAggregateMismatch if ev.AggregateID does not match
// this aggregate, or KindSequenceMismatch if ev.SequenceNumber is not
// exactly EventSequenceNumber()+1.
func ApplyEvent[M, P any](a Aggregate[M], serializer EventSerializer[P], ev Event[P]) (Aggregate[M], error) {
	if ev.AggregateID != a.aggregateID {
		return a, New(KindAggregateMismatch,
			fmt.Sprintf("event aggregate_id %s does not match aggregate %s", ev.AggregateID, a.aggregateID))
	}
	if ev.SequenceNumber != a.eventSeq+1 {
		return a, New(KindSequenceMismatch,
			fmt.Sprintf("event sequence_number %d does not match expected %d", ev.SequenceNumber, a.eventSeq+1))
	}

	se, err := serializer.Serialize(ev)
	if err != nil {
		return a, Wrap(KindSerializationFailed, "serialize event", err)
	}

	memento := a.memento
	if a.folder != nil {
		memento, err = a.folder.Fold(memento, se)
		if err != nil {
			return a, Wrap(KindSerializationFailed, "fold event into memento", err)
		}
	}

	next := a
	next.eventSeq = ev.SequenceNumber
	next.memento = memento
	next.uncommitted = append(append([]SerializedEvent{}, a.uncommitted...), se)
	return next, nil
}

// FoldEvent is the event-level counterpart of ApplyCommits, used by
// AggregateReader when replaying a flat stream of already-serialized
// events rather than whole Commits. It advances EventSequenceNumber to
// ev.SequenceNumber and CommitSequenceNumber to ev.CommitSequenceNumber
// (the denormalized commit sequence carried on every event row),
// folding the payload into the memento if a Folder is configured.
//
// Fails with KindAggregateMismatch / KindSequenceMismatch under the
// same preconditions as ApplyEvent.
func (a Aggregate[M]) FoldEvent(ev SerializedEvent) (Aggregate[M], error) {
	if ev.AggregateID != a.aggregateID {
		return a, New(KindAggregateMismatch,
			fmt.Sprintf("event aggregate_id %s does not match aggregate %s", ev.AggregateID, a.aggregateID))
	}
	if ev.SequenceNumber != a.eventSeq+1 {
		return a, New(KindSequenceMismatch,
			fmt.Sprintf("event sequence_number %d does not match expected %d", ev.SequenceNumber, a.eventSeq+1))
	}

	memento := a.memento
	if a.folder != nil {
		var err error
		memento, err = a.folder.Fold(memento, ev)
		if err != nil {
			return a, Wrap(KindSerializationFailed, "fold event into memento", err)
		}
	}

	next := a
	next.eventSeq = ev.SequenceNumber
	next.commitSeq = ev.CommitSequenceNumber
	next.memento = memento
	return next, nil
}

// ApplyCommits validates commits against the aggregate's current
// position (see es/validate) and folds every event in every commit in
// order, advancing CommitSequenceNumber by len(commits) and
// EventSequenceNumber by the total event count. Uncommitted is left
// unchanged: rehydration never injects uncommitted state.
//
// Fails with KindAggregateMismatch or KindCorruptedHistory if the
// commit stream does not continue directly from this aggregate's
// position.
func (a Aggregate[M]) ApplyCommits(commits []Commit) (Aggregate[M], error) {
	if err := validateCommits(a.aggregateID, a.commitSeq, a.eventSeq, commits); err != nil {
		return a, err
	}

	next := a
	for _, c := range commits {
		for _, se := range c.Events {
			var err error
			next, err = next.foldCommitted(se, c.SequenceNumber)
			if err != nil {
				return a, err
			}
		}
	}
	return next, nil
}

// foldCommitted folds a single event that is known (by prior
// validation) to belong to commit commitSeq, without re-checking
// sequence preconditions event-by-event — ApplyCommits has already
// validated the whole stream up front.
func (a Aggregate[M]) foldCommitted(se SerializedEvent, commitSeq int64) (Aggregate[M], error) {
	memento := a.memento
	if a.folder != nil {
		var err error
		memento, err = a.folder.Fold(memento, se)
		if err != nil {
			return a, Wrap(KindSerializationFailed, "fold event into memento", err)
		}
	}

	next := a
	next.eventSeq = se.SequenceNumber
	next.commitSeq = commitSeq
	next.memento = memento
	return next, nil
}

// Commit packages the uncommitted buffer as a Commit and hands it to
// writer. If Uncommitted is empty, Commit is an idempotent no-op that
// returns the receiver unchanged.
//
// On success, returns a new aggregate with CommitSequenceNumber
// advanced by one, EventSequenceNumber unchanged, and Uncommitted
// cleared. On a KindConcurrency failure from writer, the aggregate
// value is returned unchanged; the caller must reload via
// AggregateReader and re-apply its intent. Any other failure is
// surfaced as-is.
func (a Aggregate[M]) Commit(ctx context.Context, tx DBTX, writer EventWriter, now func() int64) (Aggregate[M], error) {
	if len(a.uncommitted) == 0 {
		return a, nil
	}

	seq := a.commitSeq + 1
	events := make([]SerializedEvent, len(a.uncommitted))
	for i, se := range a.uncommitted {
		se.CommitSequenceNumber = seq
		events[i] = se
	}

	commit := Commit{
		AggregateID:    a.aggregateID,
		PartitionKey:   a.partitionKey,
		SequenceNumber: seq,
		TimestampMS:    now(),
		Events:         events,
	}

	if err := writer.WriteCommit(ctx, tx, commit); err != nil {
		return a, err
	}

	next := a
	next.commitSeq = seq
	next.uncommitted = nil
	return next, nil
}

// StoreSnapshot publishes a SerializedSnapshot at the aggregate's
// current (CommitSequenceNumber, EventSequenceNumber) via serializer
// and writer. Uncommitted state is never reflected in a snapshot —
// only committed history.
func (a Aggregate[M]) StoreSnapshot(ctx context.Context, tx DBTX, serializer SnapshotSerializer[M], writer SnapshotWriter) error {
	snapshot := Snapshot[M]{
		AggregateID:          a.aggregateID,
		PartitionKey:         a.partitionKey,
		CommitSequenceNumber: a.commitSeq,
		EventSequenceNumber:  a.eventSeq,
		Memento:              a.memento,
	}

	ss, err := serializer.Serialize(snapshot)
	if err != nil {
		return Wrap(KindSerializationFailed, "serialize snapshot", err)
	}

	return writer.Write(ctx, tx, ss)
}
