// Package boundspec parses the user-supplied --start/--end bound text
// into a BoundSpec, and holds the small static release-tag -> branch-point
// table used to resolve a ReleaseTag bound without an oracle round trip.
//
// Grounded on the teacher's internal/checkupstream/check.go: the check
// struct there is a small parsed-option bag built from one of several
// source-string shapes, exactly the role BoundSpec plays here.
package boundspec

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"golang.org/x/xerrors"
)

// Kind distinguishes the three ways a user can name a bound.
type Kind int

const (
	// DateKind is a literal YYYY-MM-DD nightly date.
	DateKind Kind = iota
	// ReleaseTagKind is a released version number, e.g. "1.34.0".
	ReleaseTagKind
	// ShaKind is a git commit SHA on the upstream master chain.
	ShaKind
)

// BoundSpec is the parsed form of one --start/--end argument, before it
// has been resolved to a concrete bisect.BuildPoint (that resolution
// needs the source oracle and is done by internal/boundary).
type BoundSpec struct {
	Kind Kind
	Date time.Time // DateKind
	Tag  string    // ReleaseTagKind, normalized to "vX.Y.Z"
	SHA  string    // ShaKind, lowercased full or abbreviated hex
}

func (b BoundSpec) String() string {
	switch b.Kind {
	case DateKind:
		return b.Date.Format("2006-01-02")
	case ReleaseTagKind:
		return strings.TrimPrefix(b.Tag, "v")
	default:
		return b.SHA
	}
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	shaRe  = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)
)

// maybeV normalizes a bare "1.34.0" into "v1.34.0" the way semver.IsValid
// requires; mirrors the teacher's checkupstream.maybeV helper.
func maybeV(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Parse classifies s into a BoundSpec. The precedence is date, then
// semver release tag, then commit SHA, then a hard parse error — a bare
// "--start bogus" must fail before any I/O (spec.md §7 "Argument error").
func Parse(s string) (BoundSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BoundSpec{}, xerrors.New("boundspec: empty bound")
	}
	if dateRe.MatchString(s) {
		d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return BoundSpec{}, xerrors.Errorf("boundspec: invalid date %q: %w", s, err)
		}
		return BoundSpec{Kind: DateKind, Date: d}, nil
	}
	if v := maybeV(s); semver.IsValid(v) {
		return BoundSpec{Kind: ReleaseTagKind, Tag: v}, nil
	}
	if shaRe.MatchString(s) {
		return BoundSpec{Kind: ShaKind, SHA: strings.ToLower(s)}, nil
	}
	return BoundSpec{}, xerrors.Errorf("boundspec: %q is not a date (YYYY-MM-DD), a release tag (X.Y.Z), or a commit SHA", s)
}

// Less orders two ReleaseTagKind BoundSpecs by semver.
func Less(a, b BoundSpec) bool {
	return semver.Compare(a.Tag, b.Tag) < 0
}

// errNotInTable is returned by Table.BranchDate for a tag the static
// table has no entry for.
type errNotInTable struct{ tag string }

func (e *errNotInTable) Error() string {
	return fmt.Sprintf("boundspec: no branch-point date known for release %s", e.tag)
}
