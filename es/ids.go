package es

import "github.com/google/uuid"

// AggregateID uniquely identifies an aggregate instance. It is an opaque
// 128-bit value; the engine never interprets its contents.
type AggregateID = uuid.UUID

// NewAggregateID generates a fresh, random AggregateID.
func NewAggregateID() AggregateID {
	return uuid.New()
}

// ParseAggregateID parses the canonical textual form of an AggregateID.
func ParseAggregateID(s string) (AggregateID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AggregateID{}, Wrap(KindSerializationFailed, "parse aggregate id", err)
	}
	return id, nil
}

// PartitionKey routes an aggregate to a storage partition. It is
// immutable for the lifetime of an aggregate. By convention it equals
// the textual form of the AggregateID unless the caller chooses
// otherwise (for example, to co-locate several aggregates).
type PartitionKey string

// String returns the partition key as a plain string.
func (p PartitionKey) String() string {
	return string(p)
}

// IsEmpty reports whether the partition key has not been set.
func (p PartitionKey) IsEmpty() bool {
	return p == ""
}

// PartitionKeyForAggregate returns the conventional partition key for an
// aggregate: the textual form of its AggregateID.
func PartitionKeyForAggregate(id AggregateID) PartitionKey {
	return PartitionKey(id.String())
}
