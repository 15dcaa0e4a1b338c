package cursor

import (
	"testing"

	"github.com/stratum-es/aggregatecore/es"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	s := State{AggregateID: es.NewAggregateID(), NextSeq: 100, MaxSeq: 249, MaxItems: 100}

	token := Encode(s)
	if token.IsEmpty() {
		t.Fatal("Encode produced an empty token")
	}

	got, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != s {
		t.Errorf("Decode() = %+v, want %+v", got, s)
	}
}

func TestDecode_RejectsMalformedToken(t *testing.T) {
	_, err := Decode(es.ContinuationToken("not-a-real-token"))
	if !es.IsKind(err, es.KindStorageUnavailable) {
		t.Errorf("expected KindStorageUnavailable, got %v", err)
	}
}
