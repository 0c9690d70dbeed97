// Package bisecttest holds fakes shared by the rest of the tree's tests:
// a scripted source-repo oracle and a scripted probe function, so the
// bisector and orchestrator can be exercised without a network, a git
// clone, or a real rustup install.
//
// Grounded on the teacher's internal/distritest/distritest.go, which
// played the same role for distri's integration tests (spin up a real
// subprocess fixture, hand back a cleanup closure); the shape here is
// simpler because the bisector's dependencies are narrow interfaces
// rather than a whole export server.
package bisecttest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
)

// RemoveAll wraps os.RemoveAll and fails the test on failure.
func RemoveAll(t testing.TB, path string) {
	if err := os.RemoveAll(path); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

// Outcomes is a scripted ProbeFunc: index i classifies as Outcomes[i].
// Out-of-range indices are a test bug and panic immediately rather than
// silently returning a zero Outcome.
type Outcomes []bisect.Outcome

// Probe satisfies the (ctx, index int) -> (Outcome, error) shape
// internal/bisect's ProbeFunc expects.
func (o Outcomes) Probe(_ context.Context, i int) (bisect.Outcome, error) {
	if i < 0 || i >= len(o) {
		panic(fmt.Sprintf("bisecttest: probe index %d out of range [0,%d)", i, len(o)))
	}
	return o[i], nil
}

// FakeOracle answers from an in-memory commit list rather than git or the
// GitHub API. Built once per test with the chronological chain it should
// hand back from RangeFirstParent.
type FakeOracle struct {
	Commits        []oracle.Commit
	MasterSHAs     map[string]bool
	NightlyCommits map[string]string // "2018-07-30" -> sha
}

var _ oracle.Oracle = (*FakeOracle)(nil)

func (f *FakeOracle) RangeFirstParent(_ context.Context, lo, hi string) ([]oracle.Commit, error) {
	var out []oracle.Commit
	started := false
	for _, c := range f.Commits {
		if c.SHA == lo {
			started = true
			continue
		}
		if !started {
			continue
		}
		out = append(out, c)
		if c.SHA == hi {
			break
		}
	}
	return out, nil
}

func (f *FakeOracle) SubjectLineOf(_ context.Context, sha string) (string, error) {
	for _, c := range f.Commits {
		if c.SHA == sha {
			return c.Subject, nil
		}
	}
	return "", fmt.Errorf("bisecttest: unknown sha %s", sha)
}

func (f *FakeOracle) IsOnMaster(_ context.Context, sha string) (bool, time.Time, error) {
	if f.MasterSHAs[sha] {
		for _, c := range f.Commits {
			if c.SHA == sha {
				return true, c.AuthorDate, nil
			}
		}
	}
	return false, time.Time{}, nil
}

func (f *FakeOracle) CommitForNightly(_ context.Context, date time.Time) (string, error) {
	sha, ok := f.NightlyCommits[date.Format("2006-01-02")]
	if !ok {
		return "", fmt.Errorf("bisecttest: no commit recorded for nightly %s", date.Format("2006-01-02"))
	}
	return sha, nil
}
