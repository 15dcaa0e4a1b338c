package es

import "time"

// Event is a logical, in-process domain event: a typed payload P paired
// with the bookkeeping the kernel needs to validate and serialize it.
// Event is a value object; it carries no identity until the kernel
// serializes it into a SerializedEvent.
type Event[P any] struct {
	// AggregateID identifies the aggregate instance this event belongs to.
	AggregateID AggregateID

	// SequenceNumber is the position of this event within the aggregate's
	// event stream. It must equal the aggregate's current event_seq+1 at
	// the moment the event is applied.
	SequenceNumber int64

	// Payload is the domain-specific event data.
	Payload P

	// PayloadType identifies the schema of Payload for dispatch by
	// domain code and by the codec layer.
	PayloadType string

	// Timestamp is when the event was created. The zero value means
	// unset; callers that care about event time should set it
	// explicitly before applying the event.
	Timestamp time.Time
}

// SerializedEvent is the wire form of an Event: a payload_type
// discriminant plus opaque payload bytes, produced by an EventSerializer
// and stored by an EventWriter.
type SerializedEvent struct {
	// AggregateID identifies the aggregate instance this event belongs to.
	AggregateID AggregateID

	// SequenceNumber is this event's position in the aggregate's event
	// stream.
	SequenceNumber int64

	// CommitSequenceNumber is the sequence number of the commit this
	// event was written as part of. It is denormalized onto the event
	// row so a replaying reader can track commit_seq while folding a
	// flat event stream, without reconstructing Commit objects.
	CommitSequenceNumber int64

	// PayloadType identifies the schema of PayloadBytes.
	PayloadType string

	// PayloadBytes is the serialized event payload.
	PayloadBytes []byte

	// Timestamp is when the event was created.
	Timestamp time.Time
}
