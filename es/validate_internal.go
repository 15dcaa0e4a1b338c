package es

import "fmt"

// ValidateCommits checks a sequence of commits against an aggregate
// currently positioned at (commitSeq, eventSeq), in order:
//
//  1. Every commit's AggregateID matches aggregateID.
//  2. The first commit's SequenceNumber equals commitSeq+1; subsequent
//     commits increase by exactly 1.
//  3. The first commit's first event has SequenceNumber eventSeq+1;
//     subsequent event sequence numbers increase by exactly 1 across
//     the combined stream.
//
// Any violation is returned as an *Error of kind KindCorruptedHistory
// (or KindAggregateMismatch for an aggregate_id mismatch). This is the
// definitive implementation of the contract; es/validate re-exports it
// for callers that want to validate a commit stream without going
// through an Aggregate value.
func ValidateCommits(aggregateID AggregateID, commitSeq, eventSeq int64, commits []Commit) error {
	expectedCommitSeq := commitSeq + 1
	expectedEventSeq := eventSeq + 1

	for i, c := range commits {
		if c.AggregateID != aggregateID {
			return New(KindAggregateMismatch,
				fmt.Sprintf("commit %d: aggregate_id %s does not match %s", i, c.AggregateID, aggregateID))
		}

		if c.SequenceNumber != expectedCommitSeq {
			return New(KindCorruptedHistory,
				fmt.Sprintf("commit %d: expected commit sequence %d, got %d", i, expectedCommitSeq, c.SequenceNumber))
		}

		if c.IsEmpty() {
			return New(KindCorruptedHistory, fmt.Sprintf("commit %d: has no events", i))
		}

		for j, e := range c.Events {
			if e.SequenceNumber != expectedEventSeq {
				return New(KindCorruptedHistory,
					fmt.Sprintf("commit %d, event %d: expected event sequence %d, got %d",
						i, j, expectedEventSeq, e.SequenceNumber))
			}
			expectedEventSeq++
		}

		expectedCommitSeq++
	}

	return nil
}

func validateCommits(aggregateID AggregateID, commitSeq, eventSeq int64, commits []Commit) error {
	return ValidateCommits(aggregateID, commitSeq, eventSeq, commits)
}
