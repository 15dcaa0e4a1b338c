package es

import (
	"testing"
	"time"
)

func TestEvent_FieldsRoundTrip(t *testing.T) {
	id := NewAggregateID()
	now := time.Now()

	e := Event[string]{
		AggregateID:    id,
		SequenceNumber: 3,
		Payload:        "hello",
		PayloadType:    "Greeting",
		Timestamp:      now,
	}

	if e.AggregateID != id {
		t.Errorf("AggregateID = %v, want %v", e.AggregateID, id)
	}
	if e.SequenceNumber != 3 {
		t.Errorf("SequenceNumber = %d, want 3", e.SequenceNumber)
	}
	if e.Payload != "hello" {
		t.Errorf("Payload = %q, want %q", e.Payload, "hello")
	}
	if e.PayloadType != "Greeting" {
		t.Errorf("PayloadType = %q, want %q", e.PayloadType, "Greeting")
	}
	if !e.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, now)
	}
}

func TestSerializedEvent_ZeroValue(t *testing.T) {
	var se SerializedEvent

	if se.AggregateID != (AggregateID{}) {
		t.Errorf("zero value AggregateID should be the nil UUID")
	}
	if se.SequenceNumber != 0 || se.CommitSequenceNumber != 0 {
		t.Errorf("zero value sequence numbers should be 0, got seq=%d commit_seq=%d",
			se.SequenceNumber, se.CommitSequenceNumber)
	}
	if se.PayloadBytes != nil {
		t.Errorf("zero value PayloadBytes should be nil")
	}
}
