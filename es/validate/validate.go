// Package validate exposes commit-stream validation for callers that
// want to check a sequence of commits against an aggregate's recorded
// position without going through an es.Aggregate value directly — for
// example, a provider implementation sanity-checking a page of commits
// it is about to replay.
package validate

import "github.com/stratum-es/aggregatecore/es"

// Commits validates a sequence of commits against an aggregate
// currently at (commitSeq, eventSeq). See es.ValidateCommits for the
// full contract; this is a thin re-export so the kernel package stays
// the single source of truth for the validation algorithm.
func Commits(aggregateID es.AggregateID, commitSeq, eventSeq int64, commits []es.Commit) error {
	return es.ValidateCommits(aggregateID, commitSeq, eventSeq, commits)
}
