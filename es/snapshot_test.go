package es

import "testing"

func TestSnapshot_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot[int]
		want bool
	}{
		{
			name: "fresh sentinel is empty",
			snap: Snapshot[int]{CommitSequenceNumber: -1, EventSequenceNumber: -1},
			want: true,
		},
		{
			name: "checkpoint at zero is not empty",
			snap: Snapshot[int]{CommitSequenceNumber: 0, EventSequenceNumber: 0},
			want: false,
		},
		{
			name: "checkpoint at a later sequence is not empty",
			snap: Snapshot[int]{CommitSequenceNumber: 5, EventSequenceNumber: 17},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmptySerializedSnapshot(t *testing.T) {
	id := NewAggregateID()
	pk := PartitionKeyForAggregate(id)

	ss := EmptySerializedSnapshot(id, pk)

	if !ss.IsEmpty {
		t.Error("expected IsEmpty to be true")
	}
	if ss.CommitSequenceNumber != EmptySequenceNumber || ss.EventSequenceNumber != EmptySequenceNumber {
		t.Errorf("expected sequence numbers -1, got commit=%d event=%d",
			ss.CommitSequenceNumber, ss.EventSequenceNumber)
	}
	if ss.AggregateID != id {
		t.Errorf("AggregateID = %v, want %v", ss.AggregateID, id)
	}
	if ss.PartitionKey != pk {
		t.Errorf("PartitionKey = %v, want %v", ss.PartitionKey, pk)
	}
}
