// Package classifier maps one probe's (exit status, captured output) to
// an Outcome under a fixed policy.
//
// Grounded on cmd/distri/distri.go's verbs map[string]cmd{...} dispatch
// table — "policy as data" (spec.md §9): adding a classifier policy adds
// one map entry, not a new branch in a chain of ifs.
package classifier

import (
	"bytes"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/driver"
)

// Policy is the closed enumeration of regression-detection rules
// (spec.md §4.4).
type Policy string

const (
	PolicyError    Policy = "error"
	PolicySuccess  Policy = "success"
	PolicyICE      Policy = "ice"
	PolicyNonICE   Policy = "non-ice"
	PolicyNonError Policy = "non-error"
)

// ValidPolicies lists every recognized --regress value, for argument
// validation and --help text.
var ValidPolicies = []Policy{PolicyError, PolicySuccess, PolicyICE, PolicyNonICE, PolicyNonError}

func (p Policy) Valid() bool {
	for _, v := range ValidPolicies {
		if v == p {
			return true
		}
	}
	return false
}

// iceMarkers are matched case-sensitively, byte-wise, against the
// concatenated stdout+stderr (spec.md §4.4).
var iceMarkers = [][]byte{
	[]byte("internal compiler error"),
	[]byte("has overflowed its stack"),
	[]byte("compiler unexpectedly panicked"),
}

// HasICE reports whether output contains any ICE marker substring. A
// timed-out probe counts as an ICE for the policies that care (spec.md
// §4.4: "considered an ICE for the non-ice/non-error policies").
func HasICE(r driver.Result) bool {
	if r.TimedOut {
		return true
	}
	for _, m := range iceMarkers {
		if bytes.Contains(r.Output, m) {
			return true
		}
	}
	return false
}

// policyTable maps each Policy to a pure function of the probe result.
// This is the table the "policy as data" design note refers to: adding a
// row never touches the others.
var policyTable = map[Policy]func(driver.Result) bisect.Outcome{
	PolicyError: func(r driver.Result) bisect.Outcome {
		if r.Success() {
			return bisect.Baseline
		}
		return bisect.Regressed
	},
	PolicySuccess: func(r driver.Result) bisect.Outcome {
		if r.Success() {
			return bisect.Regressed
		}
		return bisect.Baseline
	},
	PolicyICE: func(r driver.Result) bisect.Outcome {
		if !r.TimedOut && HasICE(r) {
			return bisect.Regressed
		}
		return bisect.Baseline
	},
	PolicyNonICE: func(r driver.Result) bisect.Outcome {
		if HasICE(r) {
			return bisect.Baseline
		}
		return bisect.Regressed
	},
	PolicyNonError: func(r driver.Result) bisect.Outcome {
		if r.Success() || HasICE(r) {
			return bisect.Regressed
		}
		return bisect.Baseline
	},
}

// Classify is pure: the same (result, policy) always yields the same
// Outcome (spec.md §8 "Classifier is pure").
func Classify(r driver.Result, policy Policy) (bisect.Outcome, error) {
	fn, ok := policyTable[policy]
	if !ok {
		return bisect.Fatal, &ErrUnknownPolicy{Policy: policy}
	}
	return fn(r), nil
}

// ErrUnknownPolicy is an argument error: an unrecognized --regress value
// is rejected before any I/O (spec.md §7).
type ErrUnknownPolicy struct{ Policy Policy }

func (e *ErrUnknownPolicy) Error() string {
	return "classifier: unknown policy " + string(e.Policy)
}

// Labels overrides the words "baseline"/"regressed" in user-facing
// messages for one run (spec.md §4.4 "--term-old/--term-new").
type Labels struct {
	Baseline  string
	Regressed string
}

// DefaultLabels is used when the user passes neither --term-old nor
// --term-new.
var DefaultLabels = Labels{Baseline: "baseline", Regressed: "regressed"}

// Label renders o using l, falling back to the Outcome's own String for
// Skipped/Fatal (which are never user-relabeled).
func (l Labels) Label(o bisect.Outcome) string {
	switch o {
	case bisect.Baseline:
		if l.Baseline != "" {
			return l.Baseline
		}
		return "baseline"
	case bisect.Regressed:
		if l.Regressed != "" {
			return l.Regressed
		}
		return "regressed"
	default:
		return o.String()
	}
}
