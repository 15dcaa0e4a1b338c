// Package codec provides the default JSON-backed implementations of the
// es.EventSerializer and es.SnapshotSerializer contracts. The core never
// requires JSON specifically — serialization is a pluggable dependency —
// but encoding/json is the format every example in this engine's
// reference corpus reaches for when it needs to turn a domain payload
// into opaque bytes, so it is the default here too.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/stratum-es/aggregatecore/es"
)

// JSONEventSerializer implements es.EventSerializer[P] by marshaling and
// unmarshaling P with encoding/json. PayloadType is supplied by the
// caller per Event and is carried through unchanged; the serializer does
// not infer it from P's Go type, since the same Go type name may appear
// in several version packages while es/eventmap gives each version its
// own payload_type (UserRegistered, UserRegisteredV2).
type JSONEventSerializer[P any] struct{}

// NewJSONEventSerializer constructs a JSONEventSerializer[P].
func NewJSONEventSerializer[P any]() JSONEventSerializer[P] {
	return JSONEventSerializer[P]{}
}

// Serialize implements es.EventSerializer[P].
func (JSONEventSerializer[P]) Serialize(event es.Event[P]) (es.SerializedEvent, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return es.SerializedEvent{}, es.Wrap(es.KindSerializationFailed,
			fmt.Sprintf("marshal payload type %s", event.PayloadType), err)
	}

	return es.SerializedEvent{
		AggregateID:    event.AggregateID,
		SequenceNumber: event.SequenceNumber,
		PayloadType:    event.PayloadType,
		PayloadBytes:   payload,
		Timestamp:      event.Timestamp,
	}, nil
}

// Deserialize implements es.EventSerializer[P].
func (JSONEventSerializer[P]) Deserialize(se es.SerializedEvent) (es.Event[P], error) {
	var payload P
	if err := json.Unmarshal(se.PayloadBytes, &payload); err != nil {
		return es.Event[P]{}, es.Wrap(es.KindSerializationFailed,
			fmt.Sprintf("unmarshal payload type %s", se.PayloadType), err)
	}

	return es.Event[P]{
		AggregateID:    se.AggregateID,
		SequenceNumber: se.SequenceNumber,
		Payload:        payload,
		PayloadType:    se.PayloadType,
		Timestamp:      se.Timestamp,
	}, nil
}

// JSONSnapshotSerializer implements es.SnapshotSerializer[M] by
// marshaling and unmarshaling M with encoding/json.
type JSONSnapshotSerializer[M any] struct{}

// NewJSONSnapshotSerializer constructs a JSONSnapshotSerializer[M].
func NewJSONSnapshotSerializer[M any]() JSONSnapshotSerializer[M] {
	return JSONSnapshotSerializer[M]{}
}

// Serialize implements es.SnapshotSerializer[M].
func (JSONSnapshotSerializer[M]) Serialize(snapshot es.Snapshot[M]) (es.SerializedSnapshot, error) {
	memento, err := json.Marshal(snapshot.Memento)
	if err != nil {
		return es.SerializedSnapshot{}, es.Wrap(es.KindSerializationFailed, "marshal memento", err)
	}

	return es.SerializedSnapshot{
		AggregateID:          snapshot.AggregateID,
		PartitionKey:         snapshot.PartitionKey,
		CommitSequenceNumber: snapshot.CommitSequenceNumber,
		EventSequenceNumber:  snapshot.EventSequenceNumber,
		MementoBytes:         memento,
		IsEmpty:              snapshot.IsEmpty(),
	}, nil
}

// Deserialize implements es.SnapshotSerializer[M]. If ss.IsEmpty, the
// returned Snapshot's Memento comes from defaultMemento instead of
// attempting to decode ss.MementoBytes.
func (JSONSnapshotSerializer[M]) Deserialize(ss es.SerializedSnapshot, defaultMemento func() M) (es.Snapshot[M], error) {
	if ss.IsEmpty {
		var memento M
		if defaultMemento != nil {
			memento = defaultMemento()
		}
		return es.Snapshot[M]{
			AggregateID:          ss.AggregateID,
			PartitionKey:         ss.PartitionKey,
			CommitSequenceNumber: es.EmptySequenceNumber,
			EventSequenceNumber:  es.EmptySequenceNumber,
			Memento:              memento,
		}, nil
	}

	var memento M
	if err := json.Unmarshal(ss.MementoBytes, &memento); err != nil {
		return es.Snapshot[M]{}, es.Wrap(es.KindSerializationFailed, "unmarshal memento", err)
	}

	return es.Snapshot[M]{
		AggregateID:          ss.AggregateID,
		PartitionKey:         ss.PartitionKey,
		CommitSequenceNumber: ss.CommitSequenceNumber,
		EventSequenceNumber:  ss.EventSequenceNumber,
		Memento:              memento,
	}, nil
}

var (
	_ es.EventSerializer[struct{}]    = JSONEventSerializer[struct{}]{}
	_ es.SnapshotSerializer[struct{}] = JSONSnapshotSerializer[struct{}]{}
)
