package storage

import (
	"strings"
	"testing"
)

func TestObjectKeyIsUniqueWithinFolder(t *testing.T) {
	a := ObjectKey("/profitability/2026-05/", "report.csv")
	b := ObjectKey("profitability/2026-05", "report.csv")

	if a == b {
		t.Fatalf("expected distinct keys, got %q twice", a)
	}
	for _, key := range []string{a, b} {
		if !strings.HasPrefix(key, "profitability/2026-05/report_") || !strings.HasSuffix(key, ".csv") {
			t.Fatalf("unexpected key %q", key)
		}
	}
}
