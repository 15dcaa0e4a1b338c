package es

// EmptySequenceNumber is the sentinel sequence number for an aggregate or
// snapshot that has no committed history yet.
const EmptySequenceNumber int64 = -1

// Snapshot is a checkpoint of an aggregate's folded state at a given
// sequence number. The memento is opaque domain-specific state; the core
// never inspects it.
type Snapshot[M any] struct {
	AggregateID          AggregateID
	PartitionKey         PartitionKey
	CommitSequenceNumber int64
	EventSequenceNumber  int64
	Memento              M
}

// IsEmpty reports whether this snapshot represents "no history" rather
// than a real checkpoint.
func (s Snapshot[M]) IsEmpty() bool {
	return s.CommitSequenceNumber == EmptySequenceNumber && s.EventSequenceNumber == EmptySequenceNumber
}

// SerializedSnapshot is the wire form of a Snapshot: opaque memento
// bytes plus the sequence numbers it checkpoints. IsEmpty is the tagged
// discriminant for "no snapshot exists" rather than relying on callers
// to infer it from the sequence numbers.
type SerializedSnapshot struct {
	AggregateID          AggregateID
	PartitionKey         PartitionKey
	CommitSequenceNumber int64
	EventSequenceNumber  int64
	MementoBytes         []byte
	IsEmpty              bool
}

// EmptySerializedSnapshot returns the sentinel value a SnapshotReader
// returns when no snapshot exists at or below the requested sequence.
func EmptySerializedSnapshot(aggregateID AggregateID, partitionKey PartitionKey) SerializedSnapshot {
	return SerializedSnapshot{
		AggregateID:          aggregateID,
		PartitionKey:         partitionKey,
		CommitSequenceNumber: EmptySequenceNumber,
		EventSequenceNumber:  EmptySequenceNumber,
		IsEmpty:              true,
	}
}
