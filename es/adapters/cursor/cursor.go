// Package cursor implements the continuation-token encoding shared by
// the SQL adapters under es/adapters/. A token is opaque to callers of
// the provider SPI (es.ContinuationToken); internally it is just the
// range-scan state needed to resume a paged read, colon-joined into a
// string. There is nothing dialect-specific about it, so all three
// adapters (postgres, mysql, sqlite) share this one encoding rather
// than inventing their own.
package cursor

import (
	"fmt"

	"github.com/stratum-es/aggregatecore/es"
)

// State is the range-scan position a paged EventReader.Read call needs
// to resume from.
type State struct {
	AggregateID es.AggregateID
	NextSeq     int64
	MaxSeq      int64
	MaxItems    int
}

// Encode serializes s into an opaque ContinuationToken.
func Encode(s State) es.ContinuationToken {
	return es.ContinuationToken(fmt.Sprintf("v1:%s:%d:%d:%d", s.AggregateID, s.NextSeq, s.MaxSeq, s.MaxItems))
}

// Decode parses a token produced by Encode. It fails with
// KindStorageUnavailable if the token is not one this package issued —
// callers must never synthesize tokens themselves (see es.ContinuationToken).
func Decode(token es.ContinuationToken) (State, error) {
	var idStr string
	var nextSeq, maxSeq int64
	var maxItems int

	n, err := fmt.Sscanf(string(token), "v1:%36s:%d:%d:%d", &idStr, &nextSeq, &maxSeq, &maxItems)
	if err != nil || n != 4 {
		return State{}, es.New(es.KindStorageUnavailable, "malformed continuation token")
	}

	id, err := es.ParseAggregateID(idStr)
	if err != nil {
		return State{}, &es.Error{Kind: es.KindStorageUnavailable, Message: "malformed continuation token", Cause: err}
	}

	return State{AggregateID: id, NextSeq: nextSeq, MaxSeq: maxSeq, MaxItems: maxItems}, nil
}
