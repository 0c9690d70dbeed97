// Package boundary turns the user-supplied --start/--end bounds into
// BuildPoints, and fills in a missing --start by probing backwards from
// --end (spec.md §4.1).
//
// Grounded on cmd/distri/update.go's "resolve a loose version spec against
// the index before doing anything else" stage, and on
// internal/repo/repo.go's small lookup-table-first, oracle-fallback
// resolution shape.
package boundary

import (
	"context"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/boundspec"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
	"golang.org/x/xerrors"
)

// ProbeFunc evaluates one BuildPoint end-to-end (install, run, classify)
// and is supplied by the orchestrator; the resolver never talks to the
// installer or driver directly.
type ProbeFunc func(ctx context.Context, point bisect.BuildPoint) (bisect.Outcome, error)

// DefaultMaxBackoffNightlies bounds the exponential backward search for a
// missing --start: once the step size exceeds this many nightlies without
// finding a Baseline, the search gives up rather than walking back to the
// beginning of time.
const DefaultMaxBackoffNightlies = 512

// ErrFutureDate is returned when a Date bound names a day with no
// published nightly yet.
type ErrFutureDate struct{ Date time.Time }

func (e *ErrFutureDate) Error() string {
	return "boundary: " + e.Date.Format("2006-01-02") + " is after the latest published nightly"
}

// ErrUnknownSHA is returned when the source oracle cannot confirm a SHA
// bound is reachable from upstream master.
type ErrUnknownSHA struct{ SHA string }

func (e *ErrUnknownSHA) Error() string {
	return "boundary: " + e.SHA + " is not on the master first-parent chain"
}

// ErrNoBaseline is returned when the backward exponential search exhausts
// its step budget without finding a Baseline nightly.
type ErrNoBaseline struct{ StepsTried int }

func (e *ErrNoBaseline) Error() string {
	return "boundary: no baseline found searching backwards from end"
}

// ErrNoInterval is returned when start and end resolve to the same
// BuildPoint (spec.md §8 "no interval to bisect").
var ErrNoInterval = xerrors.New("boundary: start and end resolve to the same build, no interval to bisect")

// LatestNightly is "latest published nightly as of today" (spec.md
// §4.1): the most recent UTC day whose nightly build has had time to
// publish, which in practice is yesterday.
func LatestNightly(today time.Time) bisect.BuildPoint {
	return bisect.NightlyPoint(today.AddDate(0, 0, -1).UTC())
}

// Resolve normalizes one BoundSpec to a BuildPoint (spec.md §4.1's three
// bullets). oc may be nil only if spec is not a Sha bound.
func Resolve(ctx context.Context, spec boundspec.BoundSpec, oc oracle.Oracle, releases *boundspec.Table, today time.Time) (bisect.BuildPoint, error) {
	switch spec.Kind {
	case boundspec.DateKind:
		latest := LatestNightly(today)
		if spec.Date.After(latest.Date) {
			return bisect.BuildPoint{}, &ErrFutureDate{Date: spec.Date}
		}
		return bisect.NightlyPoint(spec.Date), nil

	case boundspec.ReleaseTagKind:
		// Release tags always resolve to the branch-point nightly, never
		// to the tagged commit: by the time a release ships, the commit
		// artifacts for anything near its branch date are long past the
		// CI retention window (Open Question (a), decided in
		// SPEC_FULL.md §12).
		date, err := releases.BranchDate(spec.Tag)
		if err != nil {
			return bisect.BuildPoint{}, xerrors.Errorf("boundary: resolving release tag %s: %w", spec.Tag, err)
		}
		return bisect.NightlyPoint(date), nil

	case boundspec.ShaKind:
		if oc == nil {
			return bisect.BuildPoint{}, xerrors.New("boundary: a commit bound requires a source oracle")
		}
		onMaster, authorDate, err := oc.IsOnMaster(ctx, spec.SHA)
		if err != nil {
			return bisect.BuildPoint{}, xerrors.Errorf("boundary: checking %s against master: %w", spec.SHA, err)
		}
		if !onMaster {
			return bisect.BuildPoint{}, &ErrUnknownSHA{SHA: spec.SHA}
		}
		return bisect.CommitPoint(spec.SHA, authorDate), nil

	default:
		return bisect.BuildPoint{}, xerrors.Errorf("boundary: unrecognized bound kind %v", spec.Kind)
	}
}

// ResolveStart searches backwards from end in exponentially growing steps
// (1, 2, 4, 8, ... nightlies) for a BuildPoint that probes as Baseline
// (spec.md §4.1). end must be a Nightly point; this is only used to fill
// in a missing --start in phase 1, which only ever bisects nightlies.
func ResolveStart(ctx context.Context, end bisect.BuildPoint, probe ProbeFunc, maxBackoff int) (bisect.BuildPoint, error) {
	if end.Kind != bisect.Nightly {
		return bisect.BuildPoint{}, xerrors.New("boundary: cannot backward-search from a non-nightly end")
	}
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoffNightlies
	}

	steps := 0
	for delta := 1; delta <= maxBackoff; delta *= 2 {
		candidate := bisect.NightlyPoint(end.Date.AddDate(0, 0, -delta))
		outcome, err := probe(ctx, candidate)
		steps++
		if err != nil {
			return bisect.BuildPoint{}, xerrors.Errorf("boundary: probing %v: %w", candidate, err)
		}
		if outcome == bisect.Baseline {
			return candidate, nil
		}
	}
	return bisect.BuildPoint{}, &ErrNoBaseline{StepsTried: steps}
}

// CheckInterval rejects a start/end pair that leave nothing to bisect.
func CheckInterval(start, end bisect.BuildPoint) error {
	if start.Key() == end.Key() {
		return ErrNoInterval
	}
	return nil
}
