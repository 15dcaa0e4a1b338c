package es

import "testing"

func TestCommit_IsEmpty(t *testing.T) {
	empty := Commit{}
	if !empty.IsEmpty() {
		t.Error("zero-value Commit should be empty")
	}

	nonEmpty := Commit{Events: []SerializedEvent{{SequenceNumber: 0}}}
	if nonEmpty.IsEmpty() {
		t.Error("Commit with events should not be empty")
	}
}

func TestCommit_FirstAndLastEventSequenceNumber(t *testing.T) {
	empty := Commit{}
	if got := empty.FirstEventSequenceNumber(); got != -1 {
		t.Errorf("FirstEventSequenceNumber() on empty commit = %d, want -1", got)
	}
	if got := empty.LastEventSequenceNumber(); got != -1 {
		t.Errorf("LastEventSequenceNumber() on empty commit = %d, want -1", got)
	}

	c := Commit{
		Events: []SerializedEvent{
			{SequenceNumber: 1},
			{SequenceNumber: 2},
			{SequenceNumber: 3},
		},
	}
	if got := c.FirstEventSequenceNumber(); got != 1 {
		t.Errorf("FirstEventSequenceNumber() = %d, want 1", got)
	}
	if got := c.LastEventSequenceNumber(); got != 3 {
		t.Errorf("LastEventSequenceNumber() = %d, want 3", got)
	}
}
