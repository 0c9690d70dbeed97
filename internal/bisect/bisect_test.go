package search

import (
	"context"
	"testing"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/bisecttest"
)

func TestRunFindsExactBoundary(t *testing.T) {
	outcomes := bisecttest.Outcomes{
		bisect.Baseline,  // 0
		bisect.Baseline,  // 1
		bisect.Baseline,  // 2
		bisect.Regressed, // 3
		bisect.Regressed, // 4
	}
	res, err := Run(context.Background(), len(outcomes), outcomes.Probe, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Lo != 2 || res.Hi != 3 {
		t.Errorf("Run: Lo=%d Hi=%d, want Lo=2 Hi=3", res.Lo, res.Hi)
	}
	if res.Unresolvable {
		t.Errorf("Run: Unresolvable = true, want false")
	}
}

func TestRunRejectsNonMonotonicStart(t *testing.T) {
	outcomes := bisecttest.Outcomes{
		bisect.Regressed,
		bisect.Baseline,
		bisect.Regressed,
	}
	_, err := Run(context.Background(), len(outcomes), outcomes.Probe, nil)
	if err == nil {
		t.Fatalf("Run: expected ErrBoundsContradiction, got none")
	}
	var contra *ErrBoundsContradiction
	if _, ok := err.(*ErrBoundsContradiction); !ok {
		t.Fatalf("Run: err = %T (%v), want %T", err, err, contra)
	}
}

func TestRunRejectsNonMonotonicEnd(t *testing.T) {
	outcomes := bisecttest.Outcomes{
		bisect.Baseline,
		bisect.Baseline,
		bisect.Baseline,
	}
	_, err := Run(context.Background(), len(outcomes), outcomes.Probe, nil)
	if _, ok := err.(*ErrBoundsContradiction); !ok {
		t.Fatalf("Run: err = %T (%v), want *ErrBoundsContradiction", err, err)
	}
}

func TestRunRequiresAtLeastTwoCandidates(t *testing.T) {
	outcomes := bisecttest.Outcomes{bisect.Baseline}
	if _, err := Run(context.Background(), 1, outcomes.Probe, nil); err == nil {
		t.Fatalf("Run(n=1): expected error, got none")
	}
}

func TestRunSkipsAreResolvedByOutwardScan(t *testing.T) {
	// mid of [0,5] is index 2: skipped. The outward scan finds index 1
	// (Baseline) without the search ever failing to converge.
	outcomes := bisecttest.Outcomes{
		bisect.Baseline,
		bisect.Baseline,
		bisect.Skipped,
		bisect.Baseline,
		bisect.Regressed,
		bisect.Regressed,
	}
	res, err := Run(context.Background(), len(outcomes), outcomes.Probe, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Unresolvable {
		t.Fatalf("Run: Unresolvable = true, want false")
	}
	if res.Hi-res.Lo != 1 {
		t.Errorf("Run: interval not narrowed to width 1: Lo=%d Hi=%d", res.Lo, res.Hi)
	}
	sawIndex2 := false
	for _, step := range res.Trace {
		if step.Index == 2 {
			sawIndex2 = true
		}
	}
	if !sawIndex2 {
		t.Errorf("Run: trace never probed the skipped index 2: %+v", res.Trace)
	}
}

func TestRunReportsUnresolvableWhenEntirelySkipped(t *testing.T) {
	outcomes := bisecttest.Outcomes{
		bisect.Baseline,
		bisect.Skipped,
		bisect.Skipped,
		bisect.Skipped,
		bisect.Regressed,
	}
	res, err := Run(context.Background(), len(outcomes), outcomes.Probe, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Unresolvable {
		t.Errorf("Run: Unresolvable = false, want true")
	}
}

func TestRemainingSteps(t *testing.T) {
	cases := []struct {
		lo, hi, want int
	}{
		{0, 1, 0},
		{0, 2, 1},
		{0, 8, 3},
		{0, 9, 4},
	}
	for _, c := range cases {
		if got := remainingSteps(c.lo, c.hi); got != c.want {
			t.Errorf("remainingSteps(%d, %d) = %d, want %d", c.lo, c.hi, got, c.want)
		}
	}
}

func TestRunProgressReceivesOneEventPerProbe(t *testing.T) {
	outcomes := bisecttest.Outcomes{
		bisect.Baseline,
		bisect.Baseline,
		bisect.Regressed,
		bisect.Regressed,
	}
	var events []Event
	_, err := Run(context.Background(), len(outcomes), outcomes.Probe, func(e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Probes: 0 and 3 (bounds), then mid 1 (Baseline), then mid 2 (Regressed).
	if len(events) != 4 {
		t.Fatalf("Run: got %d progress events, want 4 (one per probe)", len(events))
	}
}
