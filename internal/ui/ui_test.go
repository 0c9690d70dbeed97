package ui

import (
	"bytes"
	"strings"
	"testing"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	search "github.com/rust-lang/cargo-bisect-rustc/internal/bisect"
)

func TestNonInteractiveOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, interactive: false}
	f := p.Func()
	f(search.Event{Step: search.Step{Index: 0, Outcome: bisect.Baseline}, RemainingSteps: 3})
	f(search.Event{Step: search.Step{Index: 5, Outcome: bisect.Regressed}, RemainingSteps: 2})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("non-interactive progress: got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "probe 0") || !strings.Contains(lines[0], "baseline") {
		t.Errorf("line 0 = %q, missing expected content", lines[0])
	}
	if !strings.Contains(lines[1], "probe 5") || !strings.Contains(lines[1], "regressed") {
		t.Errorf("line 1 = %q, missing expected content", lines[1])
	}
}

func TestInteractiveOverwritesWithCarriageReturn(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, interactive: true}
	f := p.Func()
	f(search.Event{Step: search.Step{Index: 0, Outcome: bisect.Baseline}, RemainingSteps: 3})
	f(search.Event{Step: search.Step{Index: 1, Outcome: bisect.Baseline}, RemainingSteps: 2})
	p.Done()

	out := buf.String()
	if !strings.Contains(out, "\r") {
		t.Errorf("interactive progress: expected carriage returns, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("Done(): expected a trailing newline, got %q", out)
	}
}

func TestDoneNoopWhenNothingWasPrinted(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf, interactive: true}
	p.Done()
	if buf.Len() != 0 {
		t.Errorf("Done() with no prior events wrote %q, want nothing", buf.String())
	}
}
