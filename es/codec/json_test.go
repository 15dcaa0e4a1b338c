package codec

import (
	"testing"
	"time"

	"github.com/stratum-es/aggregatecore/es"
)

type itemAdded struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type toDoMemento struct {
	Titles map[string]string `json:"titles"`
}

func TestJSONEventSerializer_RoundTrip(t *testing.T) {
	s := NewJSONEventSerializer[itemAdded]()
	id := es.NewAggregateID()
	now := time.Now().Truncate(time.Microsecond)

	event := es.Event[itemAdded]{
		AggregateID:    id,
		SequenceNumber: 0,
		Payload:        itemAdded{ID: "A", Title: "T"},
		PayloadType:    "ItemAdded",
		Timestamp:      now,
	}

	se, err := s.Serialize(event)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if se.PayloadType != "ItemAdded" {
		t.Errorf("PayloadType = %q, want ItemAdded", se.PayloadType)
	}

	got, err := s.Deserialize(se)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if got != event {
		t.Errorf("round trip = %+v, want %+v", got, event)
	}
}

func TestJSONEventSerializer_DeserializeInvalidJSON(t *testing.T) {
	s := NewJSONEventSerializer[itemAdded]()
	se := es.SerializedEvent{PayloadType: "ItemAdded", PayloadBytes: []byte("not json")}

	_, err := s.Deserialize(se)
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
	if !es.IsKind(err, es.KindSerializationFailed) {
		t.Errorf("expected KindSerializationFailed, got %v", err)
	}
}

func TestJSONSnapshotSerializer_RoundTrip(t *testing.T) {
	s := NewJSONSnapshotSerializer[toDoMemento]()
	id := es.NewAggregateID()

	snap := es.Snapshot[toDoMemento]{
		AggregateID:          id,
		PartitionKey:         es.PartitionKeyForAggregate(id),
		CommitSequenceNumber: 5,
		EventSequenceNumber:  17,
		Memento:              toDoMemento{Titles: map[string]string{"A": "T"}},
	}

	ss, err := s.Serialize(snap)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if ss.IsEmpty {
		t.Error("serialized non-empty snapshot should not be marked IsEmpty")
	}

	got, err := s.Deserialize(ss, func() toDoMemento { return toDoMemento{} })
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if got.CommitSequenceNumber != 5 || got.EventSequenceNumber != 17 {
		t.Errorf("sequence numbers not preserved: %+v", got)
	}
	if got.Memento.Titles["A"] != "T" {
		t.Errorf("memento not preserved: %+v", got.Memento)
	}
}

func TestJSONSnapshotSerializer_EmptyUsesDefaultMemento(t *testing.T) {
	s := NewJSONSnapshotSerializer[toDoMemento]()
	id := es.NewAggregateID()

	ss := es.EmptySerializedSnapshot(id, es.PartitionKeyForAggregate(id))

	called := false
	got, err := s.Deserialize(ss, func() toDoMemento {
		called = true
		return toDoMemento{Titles: map[string]string{}}
	})
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !called {
		t.Error("expected defaultMemento to be invoked for an empty snapshot")
	}
	if !got.IsEmpty() {
		t.Error("deserialized empty snapshot should report IsEmpty")
	}
	if got.CommitSequenceNumber != es.EmptySequenceNumber || got.EventSequenceNumber != es.EmptySequenceNumber {
		t.Errorf("expected sentinel sequence numbers, got %+v", got)
	}
}
