// Package bisect holds the types shared across the whole engine: the
// build-point identifier every other package addresses artifacts by, and
// the outcome enumeration the classifier and bisector communicate through.
package bisect

import (
	"fmt"
	"time"
)

// Outcome is what a single probe of a BuildPoint resolved to.
type Outcome int

const (
	// Baseline means the probe did not exhibit the regression condition.
	Baseline Outcome = iota
	// Regressed means the probe did exhibit the regression condition.
	Regressed
	// Skipped means the candidate could not be evaluated (missing
	// artifact, install failure, or an explicit user skip in prompt mode).
	Skipped
	// Fatal means the engine must abort the run entirely.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Baseline:
		return "baseline"
	case Regressed:
		return "regressed"
	case Skipped:
		return "skipped"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// BuildPoint addresses one publicly available compiler artifact: either a
// dated nightly or a commit on the upstream master first-parent chain.
// BuildPoints are immutable once constructed by a resolver and compare by
// Kind+value; ordering is defined only between two BuildPoints of the same
// Kind (see internal/buildpoint for the comparator).
type BuildPoint struct {
	Kind Kind

	// Date is set for both Kinds. It identifies the nightly channel date
	// for a Nightly BuildPoint and, for a Commit BuildPoint, the author
	// date of the underlying commit (used to place it on the joined
	// reporting axis).
	Date time.Time

	// SHA is set when Kind == Commit: the full commit hash on upstream
	// master.
	SHA string
}

// Kind distinguishes the two BuildPoint variants.
type Kind int

const (
	// Nightly identifies a dated nightly release, e.g. 2018-07-30.
	Nightly Kind = iota
	// Commit identifies a single per-commit CI artifact.
	Commit
)

func (k Kind) String() string {
	if k == Commit {
		return "commit"
	}
	return "nightly"
}

// NightlyPoint constructs a Nightly BuildPoint for the given date,
// truncated to day granularity (nightlies have no finer resolution).
func NightlyPoint(d time.Time) BuildPoint {
	y, m, day := d.Date()
	return BuildPoint{Kind: Nightly, Date: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// CommitPoint constructs a Commit BuildPoint for sha, dated by the
// commit's author date (used only for joined-axis reporting, never for
// ordering within the per-commit phase).
func CommitPoint(sha string, authorDate time.Time) BuildPoint {
	return BuildPoint{Kind: Commit, SHA: sha, Date: authorDate}
}

// Key returns the point-key this BuildPoint installs under, e.g.
// "nightly-2018-07-30" or "ci-a1b2c3...". It is also the suffix of the
// reserved toolchain name the installer registers.
func (b BuildPoint) Key() string {
	switch b.Kind {
	case Commit:
		return "ci-" + b.SHA
	default:
		return "nightly-" + b.Date.Format("2006-01-02")
	}
}

func (b BuildPoint) String() string {
	switch b.Kind {
	case Commit:
		return fmt.Sprintf("%s (%s)", b.SHA, b.Date.Format("2006-01-02"))
	default:
		return b.Date.Format("2006-01-02")
	}
}

// ToolchainName returns the reserved-prefix toolchain name this BuildPoint
// installs as for the given host triple. Every name produced by this
// function begins with ReservedPrefix, which is the sole safety guard the
// installer's delete path relies on.
func (b BuildPoint) ToolchainName(host string) string {
	return fmt.Sprintf("%s-%s-%s", ReservedPrefix, b.Key(), host)
}
