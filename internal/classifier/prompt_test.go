package classifier

import (
	"bytes"
	"strings"
	"testing"
)

type pointStub string

func (p pointStub) String() string { return string(p) }

func TestPromptParsesDecisions(t *testing.T) {
	cases := map[string]Decision{
		"o":    DecisionBaseline,
		"old":  DecisionBaseline,
		"n":    DecisionRegressed,
		"new":  DecisionRegressed,
		"s":    DecisionSkip,
		"skip": DecisionSkip,
		"r":    DecisionRetry,
		"retry": DecisionRetry,
	}
	for input, want := range cases {
		var out bytes.Buffer
		got, err := Prompt(strings.NewReader(input+"\n"), &out, DefaultLabels, pointStub("2018-07-30"))
		if err != nil {
			t.Fatalf("Prompt(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("Prompt(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestPromptReprompts(t *testing.T) {
	var out bytes.Buffer
	got, err := Prompt(strings.NewReader("bogus\nold\n"), &out, DefaultLabels, pointStub("2018-07-30"))
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if got != DecisionBaseline {
		t.Errorf("Prompt after bogus input = %v, want DecisionBaseline", got)
	}
	if !strings.Contains(out.String(), "please answer") {
		t.Errorf("Prompt: expected a reprompt message, got %q", out.String())
	}
}

func TestDecisionToOutcome(t *testing.T) {
	if DecisionSkip.ToOutcome().String() != "skipped" {
		t.Errorf("DecisionSkip.ToOutcome() = %v, want skipped", DecisionSkip.ToOutcome())
	}
}
