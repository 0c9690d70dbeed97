// Package search implements the binary search described in spec.md §4.6.
// It is deliberately ignorant of nightlies vs. commits: it operates over
// an abstract ordered, finite index range and a caller-supplied probe
// function (design note in spec.md §9: "the bisector must never know
// which is in use").
//
// There is no teacher equivalent for the search itself — distri never
// performs a binary search — so its control-flow shape (a running trace,
// one log line per unit of work, a remaining-work estimate) is styled
// after the sequential step-accounting loop in the teacher's
// internal/batch/batch.go to keep the surrounding idiom consistent.
package search

import (
	"context"
	"math"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"golang.org/x/xerrors"
)

// ProbeFunc classifies the candidate at index i. The skip-scan can call
// it for indices a plain binary search would never visit, and an index
// that came back Skipped can be probed again when it becomes the
// midpoint of a later, narrower interval.
type ProbeFunc func(ctx context.Context, i int) (bisect.Outcome, error)

// Step is one trace entry: a probed index and what it classified as.
type Step struct {
	Index   int
	Outcome bisect.Outcome
}

// Event is emitted after every probe for progress reporting.
type Event struct {
	Step           Step
	RemainingSteps int
}

// ProgressFunc receives one Event per probe. May be nil.
type ProgressFunc func(Event)

// Result is what one bisection run over one candidate sequence produced.
type Result struct {
	Lo, Hi int
	Trace  []Step

	// Unresolvable is set when an interval became entirely Skipped
	// before narrowing to width 1 (spec.md §4.6 step 3).
	Unresolvable bool
}

// ErrBoundsContradiction is spec.md §7's "Bounds contradiction": the
// caller-supplied endpoints don't actually classify the way the caller
// asserted they would. This is the non-monotonic-boundaries surface the
// data-model invariants require — the engine never silently swaps lo/hi
// to compensate.
type ErrBoundsContradiction struct {
	Reason string
}

func (e *ErrBoundsContradiction) Error() string {
	return "non-monotonic boundaries: " + e.Reason
}

// Run bisects over the n candidates addressed by probe, which must be a
// total function over [0, n). n must be at least 2 (spec.md "no interval
// to bisect" is the orchestrator's job to detect before calling Run).
func Run(ctx context.Context, n int, probe ProbeFunc, progress ProgressFunc) (Result, error) {
	if n < 2 {
		return Result{}, xerrors.New("bisect: need at least 2 candidates to bisect")
	}

	lo, hi := 0, n-1
	var trace []Step
	record := func(i int, o bisect.Outcome) {
		trace = append(trace, Step{Index: i, Outcome: o})
		if progress != nil {
			progress(Event{Step: Step{Index: i, Outcome: o}, RemainingSteps: remainingSteps(lo, hi)})
		}
	}

	first, err := probe(ctx, 0)
	if err != nil {
		return Result{}, xerrors.Errorf("bisect: probing start: %w", err)
	}
	record(0, first)
	if first != bisect.Baseline {
		return Result{Trace: trace}, &ErrBoundsContradiction{Reason: "baseline bound does not reproduce baseline behavior"}
	}

	last, err := probe(ctx, n-1)
	if err != nil {
		return Result{}, xerrors.Errorf("bisect: probing end: %w", err)
	}
	record(n-1, last)
	if last != bisect.Regressed {
		return Result{Trace: trace}, &ErrBoundsContradiction{Reason: "regression bound does not reproduce regression"}
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		outcome, resolvedAt, err := probeResolvingSkips(ctx, probe, mid, lo, hi, record)
		if err != nil {
			return Result{}, err
		}
		if outcome == Skipped {
			return Result{Lo: lo, Hi: hi, Trace: trace, Unresolvable: true}, nil
		}
		switch outcome {
		case bisect.Baseline:
			lo = resolvedAt
		case bisect.Regressed:
			hi = resolvedAt
		}
	}
	return Result{Lo: lo, Hi: hi, Trace: trace}, nil
}

// special sentinel reusing bisect.Outcome's Skipped value so the switch
// above reads naturally; kept local to avoid confusing it with the
// exported Outcome identifiers from the root package in call sites.
const Skipped = bisect.Skipped

// probeResolvingSkips classifies mid, and if it comes back Skipped,
// probes outward (mid-1, mid+1, mid-2, mid+2, ...) strictly within
// (lo, hi) until a non-Skipped candidate turns up or the interval is
// exhausted (spec.md §4.6 step 3).
func probeResolvingSkips(ctx context.Context, probe ProbeFunc, mid, lo, hi int, record func(int, bisect.Outcome)) (bisect.Outcome, int, error) {
	tryAt := func(i int) (bisect.Outcome, error) {
		o, err := probe(ctx, i)
		if err != nil {
			return 0, xerrors.Errorf("bisect: probing index %d: %w", i, err)
		}
		record(i, o)
		return o, nil
	}

	o, err := tryAt(mid)
	if err != nil {
		return 0, 0, err
	}
	if o != bisect.Skipped {
		return o, mid, nil
	}

	for offset := 1; ; offset++ {
		left, right := mid-offset, mid+offset
		any := false
		if left > lo {
			any = true
			o, err := tryAt(left)
			if err != nil {
				return 0, 0, err
			}
			if o != bisect.Skipped {
				return o, left, nil
			}
		}
		if right < hi {
			any = true
			o, err := tryAt(right)
			if err != nil {
				return 0, 0, err
			}
			if o != bisect.Skipped {
				return o, right, nil
			}
		}
		if !any {
			return bisect.Skipped, mid, nil
		}
	}
}

// remainingSteps estimates how many more probes a plain binary search
// over [lo, hi] needs (spec.md §4.6 step 5): ceil(log2(hi-lo)).
func remainingSteps(lo, hi int) int {
	width := hi - lo
	if width <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(width))))
}
