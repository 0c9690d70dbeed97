// Package buildpoint orders and enumerates bisect.BuildPoint values. It
// knows how to build the dense candidate sequences the bisector searches
// over, and how to compare two points of the same Kind.
//
// Grounded on the teacher's version.go, whose ParseVersion/String pair
// orders and renders a loosely structured identifier. This package only
// orders and enumerates; parsing bounds lives in internal/boundspec.
package buildpoint

import (
	"fmt"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
)

// Less reports whether a sorts before b. Both must share a Kind; mixing
// Kinds is a programmer error (the two orders are joined only for
// reporting, never compared directly — spec.md §2 item 1).
func Less(a, b bisect.BuildPoint) bool {
	if a.Kind != b.Kind {
		panic(fmt.Sprintf("buildpoint.Less: mismatched kinds %v vs %v", a.Kind, b.Kind))
	}
	if a.Kind == bisect.Commit {
		// Commits are ordered by their position on the first-parent chain,
		// which callers establish by the order they appear in the oracle's
		// range-first-parent result; Less here falls back to author date as
		// the only intrinsic ordering a bare BuildPoint carries.
		return a.Date.Before(b.Date)
	}
	return a.Date.Before(b.Date)
}

// Equal reports whether a and b address the same artifact.
func Equal(a, b bisect.BuildPoint) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == bisect.Commit {
		return a.SHA == b.SHA
	}
	return a.Date.Equal(b.Date)
}

// NightlyRange returns the dense, duplicate-free sequence of Nightly
// BuildPoints for every date in [start, end], inclusive. Missing
// nightlies are not filtered out here — they remain candidates that the
// catalog/archive layer will report as Skipped when probed (spec.md
// §4.7 phase 1).
func NightlyRange(start, end time.Time) []bisect.BuildPoint {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	n := int(end.Sub(start).Hours()/24) + 1
	out := make([]bisect.BuildPoint, 0, n)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, bisect.NightlyPoint(d))
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CommitSequence wraps a chronological list of commit SHAs (as returned by
// the source oracle's range-first-parent query) into BuildPoints, in the
// same order. The caller supplies author dates (the oracle has already
// fetched them) since BuildPoint itself never performs I/O.
func CommitSequence(shas []string, authorDates []time.Time) ([]bisect.BuildPoint, error) {
	if len(shas) != len(authorDates) {
		return nil, fmt.Errorf("buildpoint.CommitSequence: %d shas but %d author dates", len(shas), len(authorDates))
	}
	out := make([]bisect.BuildPoint, len(shas))
	for i, sha := range shas {
		out[i] = bisect.CommitPoint(sha, authorDates[i])
	}
	return out, nil
}

// DaysApart returns the number of calendar days between two Nightly
// BuildPoints. Used by the orchestrator to decide whether phase 1's
// result is adjacent enough to enter phase 2 (spec.md §4.7 phase 2: "one
// day apart").
func DaysApart(a, b bisect.BuildPoint) int {
	d := b.Date.Sub(a.Date).Hours() / 24
	if d < 0 {
		d = -d
	}
	return int(d + 0.5)
}
