package es

// ContinuationToken is an opaque string produced by an EventReader to
// resume paging through an aggregate's event stream. Callers must treat
// it as a black box: it cannot be synthesized or compared, only checked
// for emptiness and passed back to the reader that issued it.
type ContinuationToken string

// IsEmpty reports whether the token represents an exhausted stream.
func (t ContinuationToken) IsEmpty() bool {
	return t == ""
}
