// Package oracle answers questions about the upstream source repository's
// commit graph: which merge commits lie between two points on the
// first-parent chain, a commit's subject line, and whether a SHA is
// reachable from master at all.
//
// Grounded on the teacher's cmd/autobuilder/autobuilder.go, which wires
// golang.org/x/oauth2 + github.com/google/go-github/v27 exactly this way
// (a static token source built from an env-provided access token feeding
// github.NewClient), and on internal/build/build.go's exec.CommandContext
// wrapping of external VCS-adjacent tools for the local-clone backend.
package oracle

import (
	"context"
	"time"
)

// Commit is one entry on the first-parent chain between two BuildPoints.
type Commit struct {
	SHA        string
	AuthorDate time.Time
	Subject    string
	Body       string
}

// IsRollup reports whether this commit is a bors-style rollup merging
// several independent sub-PRs (spec.md §4.7 phase 3).
func (c Commit) IsRollup() bool {
	return isRollupSubject(c.Subject)
}

// Oracle is the capability set the bisector's phase 2/3 logic needs from
// the source repository, independent of how it's actually answered
// (design note in spec.md §9: "the bisector must never know which is in
// use").
type Oracle interface {
	// RangeFirstParent returns the first-parent merge-commit chain from
	// lo (exclusive) to hi (inclusive), in chronological order.
	RangeFirstParent(ctx context.Context, lo, hi string) ([]Commit, error)
	// SubjectLineOf returns a commit's subject line (first line of its
	// message).
	SubjectLineOf(ctx context.Context, sha string) (string, error)
	// IsOnMaster reports whether sha is reachable from upstream master,
	// and if so its author date.
	IsOnMaster(ctx context.Context, sha string) (bool, time.Time, error)
	// CommitForNightly returns the master-chain commit a dated nightly's
	// channel was cut from: the most recent first-parent commit authored
	// at or before the end of that UTC day. Used to bridge phase 1's
	// nightly pair into phase 2's commit chain (spec.md §4.7 phase 2).
	CommitForNightly(ctx context.Context, date time.Time) (string, error)
}

// ErrUnavailable is returned by backends that cannot answer right now
// (the checkout backend with no SRC_REPO_PATH configured; the github
// backend reports its failures as wrapped API errors instead of this
// type); orchestrator phases fall back to
// reporting the nightly range only (spec.md §7 "Oracle backend failure").
type ErrUnavailable struct {
	Backend string
	Reason  string
}

func (e *ErrUnavailable) Error() string {
	return "oracle (" + e.Backend + "): " + e.Reason
}
