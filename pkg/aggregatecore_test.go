package aggregatecore_test

import (
	"testing"

	"github.com/stratum-es/aggregatecore/pkg"
)

func TestVersion(t *testing.T) {
	version := aggregatecore.Version()
	if version == "" {
		t.Error("Version() should return a non-empty string")
	}
}
