package hostinfo

import (
	"strings"
	"testing"
)

func TestSupportedTriplesNonEmpty(t *testing.T) {
	triples := SupportedTriples()
	if len(triples) == 0 {
		t.Fatalf("SupportedTriples: empty, want at least one entry")
	}
	found := false
	for _, tr := range triples {
		if tr == "x86_64-unknown-linux-gnu" {
			found = true
		}
	}
	if !found {
		t.Errorf("SupportedTriples: missing x86_64-unknown-linux-gnu: %v", triples)
	}
}

func TestDetectErrorMessageNamesHostFlag(t *testing.T) {
	err := &DetectError{GOOS: "plan9", GOARCH: "mips"}
	if got := err.Error(); !strings.Contains(got, "--host") {
		t.Fatalf("DetectError.Error() = %q, want it to name the --host flag", got)
	}
}
