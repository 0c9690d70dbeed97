package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/xerrors"
)

// CheckoutOracle answers from a local clone of rust-lang/rust. Only one
// git invocation runs at a time against the clone (spec.md §5 "one
// local-filesystem lock on the source-repo clone"), grounded on the
// package-level mutex the teacher's internal/oninterrupt uses to guard
// its own shared slice.
type CheckoutOracle struct {
	RepoPath string

	mu sync.Mutex
}

var _ Oracle = (*CheckoutOracle)(nil)

func (o *CheckoutOracle) git(ctx context.Context, args ...string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", o.RepoPath}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", xerrors.Errorf("%v: %w: %s", cmd.Args, err, stderr.String())
	}
	return stdout.String(), nil
}

func (o *CheckoutOracle) RangeFirstParent(ctx context.Context, lo, hi string) ([]Commit, error) {
	if o.RepoPath == "" {
		return nil, &ErrUnavailable{Backend: "checkout", Reason: "SRC_REPO_PATH is not set"}
	}
	out, err := o.git(ctx, "log", "--first-parent", "--reverse",
		"--format=%H%x1f%aI%x1f%s%n%b%x1e", lo+".."+hi)
	if err != nil {
		return nil, xerrors.Errorf("oracle(checkout): RangeFirstParent: %w", err)
	}
	return parseLogOutput(out)
}

// parseLogOutput splits on the record separator \x1e (one per commit) and
// the field separator \x1f (SHA, author-date, subject; body follows as
// the remainder up to \x1e).
func parseLogOutput(out string) ([]Commit, error) {
	records := strings.Split(strings.Trim(out, "\n"), "\x1e")
	var commits []Commit
	for _, rec := range records {
		rec = strings.TrimPrefix(rec, "\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		fields := strings.SplitN(rec, "\x1f", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("oracle(checkout): malformed log record %q", rec)
		}
		date, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			return nil, xerrors.Errorf("oracle(checkout): parsing author date: %w", err)
		}
		subjectAndBody := strings.SplitN(fields[2], "\n", 2)
		subject := subjectAndBody[0]
		var body string
		if len(subjectAndBody) == 2 {
			body = subjectAndBody[1]
		}
		commits = append(commits, Commit{
			SHA:        fields[0],
			AuthorDate: date,
			Subject:    subject,
			Body:       body,
		})
	}
	return commits, nil
}

func (o *CheckoutOracle) SubjectLineOf(ctx context.Context, sha string) (string, error) {
	if o.RepoPath == "" {
		return "", &ErrUnavailable{Backend: "checkout", Reason: "SRC_REPO_PATH is not set"}
	}
	out, err := o.git(ctx, "log", "-1", "--format=%s", sha)
	if err != nil {
		return "", xerrors.Errorf("oracle(checkout): SubjectLineOf: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CommitForNightly finds the master commit as of the end of date's UTC
// day via `git rev-list -1 --first-parent --before=<next day> master`.
func (o *CheckoutOracle) CommitForNightly(ctx context.Context, date time.Time) (string, error) {
	if o.RepoPath == "" {
		return "", &ErrUnavailable{Backend: "checkout", Reason: "SRC_REPO_PATH is not set"}
	}
	cutoff := date.AddDate(0, 0, 1).Format("2006-01-02T15:04:05Z")
	out, err := o.git(ctx, "rev-list", "-1", "--first-parent", "--before="+cutoff, "master")
	if err != nil {
		return "", xerrors.Errorf("oracle(checkout): CommitForNightly: %w", err)
	}
	sha := strings.TrimSpace(out)
	if sha == "" {
		return "", xerrors.Errorf("oracle(checkout): no master commit before %s", cutoff)
	}
	return sha, nil
}

func (o *CheckoutOracle) IsOnMaster(ctx context.Context, sha string) (bool, time.Time, error) {
	if o.RepoPath == "" {
		return false, time.Time{}, &ErrUnavailable{Backend: "checkout", Reason: "SRC_REPO_PATH is not set"}
	}
	o.mu.Lock()
	cmd := exec.CommandContext(ctx, "git", "-C", o.RepoPath, "merge-base", "--is-ancestor", sha, "master")
	err := cmd.Run()
	o.mu.Unlock()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, time.Time{}, nil
		}
		return false, time.Time{}, xerrors.Errorf("oracle(checkout): IsOnMaster: %w", err)
	}
	out, err := o.git(ctx, "log", "-1", "--format=%aI", sha)
	if err != nil {
		return false, time.Time{}, err
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(out))
	if err != nil {
		return false, time.Time{}, xerrors.Errorf("oracle(checkout): parsing author date: %w", err)
	}
	return true, date, nil
}
