package es

import (
	"context"
	"testing"
)

func makeEvents(id AggregateID, from, to int64) []SerializedEvent {
	var events []SerializedEvent
	commitSeq := int64(0)
	for seq := from; seq <= to; seq++ {
		events = append(events, SerializedEvent{
			AggregateID:          id,
			SequenceNumber:       seq,
			CommitSequenceNumber: commitSeq,
			PayloadType:          "ItemAdded",
		})
		commitSeq++
	}
	return events
}

func TestAggregateReader_RehydratesWithoutSnapshot(t *testing.T) {
	id := NewAggregateID()
	events := makeEvents(id, 0, 3)

	snapReader := newMemorySnapshotWriter()
	eventReader := &memoryEventReader{events: events, pageSize: 100}

	reader := NewAggregateReader[int](snapReader, eventReader, jsonIntSnapshotSerializer{}, toDoFolder{})

	a, err := reader.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.EventSequenceNumber() != 3 {
		t.Errorf("EventSequenceNumber() = %d, want 3", a.EventSequenceNumber())
	}
	if a.Memento() != 4 {
		t.Errorf("Memento() = %d, want 4", a.Memento())
	}
	if len(a.Uncommitted()) != 0 {
		t.Errorf("rehydrated aggregate must have empty Uncommitted")
	}
}

func TestAggregateReader_BoundedRead(t *testing.T) {
	id := NewAggregateID()
	events := makeEvents(id, 0, 3)

	snapReader := newMemorySnapshotWriter()
	eventReader := &memoryEventReader{events: events, pageSize: 100}

	reader := NewAggregateReader[int](snapReader, eventReader, jsonIntSnapshotSerializer{}, toDoFolder{})

	a, err := reader.Read(context.Background(), nil, id, 1, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.EventSequenceNumber() != 1 {
		t.Errorf("EventSequenceNumber() = %d, want 1", a.EventSequenceNumber())
	}
	if a.CommitSequenceNumber() != 1 {
		t.Errorf("CommitSequenceNumber() = %d, want 1", a.CommitSequenceNumber())
	}
}

func TestAggregateReader_Paging(t *testing.T) {
	id := NewAggregateID()
	events := makeEvents(id, 0, 249)

	snapReader := newMemorySnapshotWriter()
	eventReader := &memoryEventReader{events: events, pageSize: 100}

	reader := NewAggregateReader[int](snapReader, eventReader, jsonIntSnapshotSerializer{}, toDoFolder{},
		WithReaderConfig[int](ReaderConfig{MaxItemsPerBatch: 100}))

	a, err := reader.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.EventSequenceNumber() != 249 {
		t.Errorf("EventSequenceNumber() = %d, want 249", a.EventSequenceNumber())
	}
	if a.Memento() != 250 {
		t.Errorf("Memento() = %d, want 250", a.Memento())
	}
}

func TestAggregateReader_MaxItemsOneMatchesUnbounded(t *testing.T) {
	id := NewAggregateID()
	events := makeEvents(id, 0, 19)

	snapReader := newMemorySnapshotWriter()

	readerOne := NewAggregateReader[int](snapReader, &memoryEventReader{events: events, pageSize: 100}, jsonIntSnapshotSerializer{}, toDoFolder{},
		WithReaderConfig[int](ReaderConfig{MaxItemsPerBatch: 1}))
	readerAll := NewAggregateReader[int](snapReader, &memoryEventReader{events: events, pageSize: 100}, jsonIntSnapshotSerializer{}, toDoFolder{},
		WithReaderConfig[int](ReaderConfig{MaxItemsPerBatch: 1000}))

	aOne, err := readerOne.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read (maxItems=1): %v", err)
	}
	aAll, err := readerAll.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read (maxItems=inf): %v", err)
	}

	if aOne.EventSequenceNumber() != aAll.EventSequenceNumber() || aOne.Memento() != aAll.Memento() {
		t.Errorf("page size should not affect final state: one=%+v all=%+v", aOne, aAll)
	}
}

func TestAggregateReader_SnapshotSkipEquivalence(t *testing.T) {
	id := NewAggregateID()
	allEvents := makeEvents(id, 0, 17)

	snapshotAt5 := SerializedSnapshot{
		AggregateID:          id,
		PartitionKey:         PartitionKeyForAggregate(id),
		CommitSequenceNumber: 5,
		EventSequenceNumber:  5,
		MementoBytes:         []byte{6},
	}
	withSnapshot := newMemorySnapshotWriter()
	withSnapshot.snapshots[id] = snapshotAt5

	withoutSnapshot := newMemorySnapshotWriter()

	readerWithSnapshot := NewAggregateReader[int](withSnapshot, &memoryEventReader{events: allEvents, pageSize: 7}, jsonIntSnapshotSerializer{}, toDoFolder{})
	readerWithoutSnapshot := NewAggregateReader[int](withoutSnapshot, &memoryEventReader{events: allEvents, pageSize: 7}, jsonIntSnapshotSerializer{}, toDoFolder{})

	fromSnapshot, err := readerWithSnapshot.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read (from snapshot): %v", err)
	}
	fromScratch, err := readerWithoutSnapshot.Read(context.Background(), nil, id, UpToLatest, func() int { return 0 })
	if err != nil {
		t.Fatalf("Read (from scratch): %v", err)
	}

	if fromSnapshot.EventSequenceNumber() != fromScratch.EventSequenceNumber() {
		t.Errorf("EventSequenceNumber mismatch: from snapshot=%d, from scratch=%d",
			fromSnapshot.EventSequenceNumber(), fromScratch.EventSequenceNumber())
	}
	if fromSnapshot.Memento() != fromScratch.Memento() {
		t.Errorf("Memento mismatch: from snapshot=%d, from scratch=%d", fromSnapshot.Memento(), fromScratch.Memento())
	}
}
