package validate

import (
	"testing"

	"github.com/stratum-es/aggregatecore/es"
)

func TestCommits_ValidStream(t *testing.T) {
	id := es.NewAggregateID()
	commits := []es.Commit{
		{AggregateID: id, SequenceNumber: 0, Events: []es.SerializedEvent{{AggregateID: id, SequenceNumber: 0}}},
		{AggregateID: id, SequenceNumber: 1, Events: []es.SerializedEvent{
			{AggregateID: id, SequenceNumber: 1},
			{AggregateID: id, SequenceNumber: 2},
		}},
	}

	if err := Commits(id, es.EmptySequenceNumber, es.EmptySequenceNumber, commits); err != nil {
		t.Fatalf("Commits: %v", err)
	}
}

func TestCommits_AggregateMismatch(t *testing.T) {
	id := es.NewAggregateID()
	other := es.NewAggregateID()
	commits := []es.Commit{
		{AggregateID: other, SequenceNumber: 0, Events: []es.SerializedEvent{{AggregateID: other, SequenceNumber: 0}}},
	}

	err := Commits(id, es.EmptySequenceNumber, es.EmptySequenceNumber, commits)
	if !es.IsKind(err, es.KindAggregateMismatch) {
		t.Errorf("expected KindAggregateMismatch, got %v", err)
	}
}

func TestCommits_GapInCommitSequence(t *testing.T) {
	id := es.NewAggregateID()
	commits := []es.Commit{
		{AggregateID: id, SequenceNumber: 1, Events: []es.SerializedEvent{{AggregateID: id, SequenceNumber: 0}}},
	}

	err := Commits(id, es.EmptySequenceNumber, es.EmptySequenceNumber, commits)
	if !es.IsKind(err, es.KindCorruptedHistory) {
		t.Errorf("expected KindCorruptedHistory, got %v", err)
	}
}

func TestCommits_GapInEventSequence(t *testing.T) {
	id := es.NewAggregateID()
	commits := []es.Commit{
		{AggregateID: id, SequenceNumber: 0, Events: []es.SerializedEvent{{AggregateID: id, SequenceNumber: 5}}},
	}

	err := Commits(id, es.EmptySequenceNumber, es.EmptySequenceNumber, commits)
	if !es.IsKind(err, es.KindCorruptedHistory) {
		t.Errorf("expected KindCorruptedHistory, got %v", err)
	}
}

func TestCommits_EmptyCommitRejected(t *testing.T) {
	id := es.NewAggregateID()
	commits := []es.Commit{
		{AggregateID: id, SequenceNumber: 0, Events: nil},
	}

	err := Commits(id, es.EmptySequenceNumber, es.EmptySequenceNumber, commits)
	if !es.IsKind(err, es.KindCorruptedHistory) {
		t.Errorf("expected KindCorruptedHistory for an empty commit, got %v", err)
	}
}
