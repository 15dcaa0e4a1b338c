package es

// Commit is an atomic unit of persistence: one or more SerializedEvent
// values written together, or not at all. Once written, a Commit is
// immutable forever.
type Commit struct {
	// AggregateID identifies the aggregate this commit belongs to.
	AggregateID AggregateID

	// PartitionKey routes this commit to a storage partition.
	PartitionKey PartitionKey

	// SequenceNumber is this commit's position in the aggregate's commit
	// history. The first commit for an aggregate has SequenceNumber 0.
	SequenceNumber int64

	// TimestampMS is when the commit was constructed, in Unix
	// milliseconds.
	TimestampMS int64

	// Events is the ordered, non-empty list of events in this commit.
	// Event sequence numbers increase by exactly 1 across the list, and
	// the first event's sequence number continues directly from the
	// previous commit's last event.
	Events []SerializedEvent
}

// IsEmpty reports whether the commit carries no events. A well-formed
// Commit is never empty; this exists so validation code can reject one
// explicitly rather than silently accepting a no-op write.
func (c Commit) IsEmpty() bool {
	return len(c.Events) == 0
}

// FirstEventSequenceNumber returns the sequence number of the first
// event in the commit, or -1 if the commit is empty.
func (c Commit) FirstEventSequenceNumber() int64 {
	if len(c.Events) == 0 {
		return -1
	}
	return c.Events[0].SequenceNumber
}

// LastEventSequenceNumber returns the sequence number of the last event
// in the commit, or -1 if the commit is empty.
func (c Commit) LastEventSequenceNumber() int64 {
	if len(c.Events) == 0 {
		return -1
	}
	return c.Events[len(c.Events)-1].SequenceNumber
}
