package orchestrator

import (
	"context"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	search "github.com/rust-lang/cargo-bisect-rustc/internal/bisect"
	"github.com/rust-lang/cargo-bisect-rustc/internal/boundary"
	"github.com/rust-lang/cargo-bisect-rustc/internal/buildpoint"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
	"golang.org/x/xerrors"
)

// RunPhase1 bisects the dense nightly range [start, end] (spec.md §4.7
// phase 1). Missing nightlies are candidates the probe itself reports as
// Skipped; the search's outward scan absorbs them.
func RunPhase1(ctx context.Context, c *Config, start, end bisect.BuildPoint, progress search.ProgressFunc) (PhaseResult, error) {
	candidates := buildpoint.NightlyRange(start.Date, end.Date)
	if len(candidates) < 2 {
		return PhaseResult{}, boundary.ErrNoInterval
	}

	probe := func(ctx context.Context, i int) (bisect.Outcome, error) {
		return c.Probe(ctx, candidates[i])
	}
	res, err := search.Run(ctx, len(candidates), probe, progress)
	if err != nil {
		return PhaseResult{}, err
	}
	return PhaseResult{
		Name:         "nightly",
		Candidates:   candidates,
		Lo:           candidates[res.Lo],
		Hi:           candidates[res.Hi],
		Unresolvable: res.Unresolvable,
	}, nil
}

// EligibleForPhase2 reports whether phase 1's narrowed pair is adjacent
// and recent enough for the source oracle to still have per-commit
// artifacts (spec.md §4.7 phase 2).
func EligibleForPhase2(lo, hi bisect.BuildPoint, today func() bisect.BuildPoint) bool {
	if buildpoint.DaysApart(lo, hi) != 1 {
		return false
	}
	latest := today()
	return buildpoint.DaysApart(hi, latest) <= CIRetentionDays
}

// RunPhase2 asks the oracle for the first-parent merge-commit chain
// between the commits named by the two adjacent nightlies, then bisects
// across it (spec.md §4.7 phase 2). loSHA/hiSHA are the commits the
// nightly channel was cut from on each of those two days.
func RunPhase2(ctx context.Context, c *Config, loSHA, hiSHA string, progress search.ProgressFunc) (PhaseResult, error) {
	if c.Oracle == nil {
		return PhaseResult{}, &oracle.ErrUnavailable{Backend: "none", Reason: "no source oracle configured"}
	}
	commits, err := c.Oracle.RangeFirstParent(ctx, loSHA, hiSHA)
	if err != nil {
		return PhaseResult{}, xerrors.Errorf("orchestrator: phase2: %w", err)
	}
	if len(commits) == 0 {
		return PhaseResult{}, xerrors.New("orchestrator: phase2: oracle returned an empty commit chain")
	}

	// candidates = [lo commit] + chain (chain already excludes lo per the
	// oracle contract, and its last entry is hi).
	points := make([]bisect.BuildPoint, 0, len(commits)+1)
	loPoint, err := subjectPoint(ctx, c.Oracle, loSHA)
	if err != nil {
		return PhaseResult{}, err
	}
	points = append(points, loPoint)
	for _, commit := range commits {
		points = append(points, bisect.CommitPoint(commit.SHA, commit.AuthorDate))
	}

	if len(points) < 2 {
		return PhaseResult{}, boundary.ErrNoInterval
	}

	probe := func(ctx context.Context, i int) (bisect.Outcome, error) {
		return c.Probe(ctx, points[i])
	}
	res, err := search.Run(ctx, len(points), probe, progress)
	if err != nil {
		return PhaseResult{}, err
	}
	return PhaseResult{
		Name:         "commit",
		Candidates:   points,
		Lo:           points[res.Lo],
		Hi:           points[res.Hi],
		Unresolvable: res.Unresolvable,
	}, nil
}

func subjectPoint(ctx context.Context, oc oracle.Oracle, sha string) (bisect.BuildPoint, error) {
	onMaster, date, err := oc.IsOnMaster(ctx, sha)
	if err != nil {
		return bisect.BuildPoint{}, xerrors.Errorf("orchestrator: resolving %s: %w", sha, err)
	}
	if !onMaster {
		return bisect.BuildPoint{}, xerrors.Errorf("orchestrator: %s is not on master", sha)
	}
	return bisect.CommitPoint(sha, date), nil
}

// RunPhase3 inspects phase 2's single regressing commit. If it is a
// bors-style rollup, it reports the rollup and its listed sub-PRs
// (spec.md §4.7 phase 3). The oracle interface has no capability that
// maps a sub-PR to the distinct per-component CI artifact the
// rollup-perf tracker built for it, so every candidate would resolve to
// the rollup's own SHA and a bisection search would "converge" on an
// interval that is really just the rollup commit compared against
// itself. This always takes the documented fallback instead: report
// the rollup and its sub-PRs without narrowing further.
func RunPhase3(ctx context.Context, c *Config, commit oracle.Commit, progress search.ProgressFunc) (*RollupResult, error) {
	if !commit.IsRollup() {
		return nil, nil
	}
	return &RollupResult{RollupCommit: commit, SubPRs: oracle.SubPRs(commit.Body)}, nil
}

// Run drives all three phases in sequence, skipping 2 and 3 when their
// eligibility conditions (spec.md §4.7) aren't met.
func Run(ctx context.Context, c *Config, start, end bisect.BuildPoint, byCommit bool, today func() bisect.BuildPoint, progress search.ProgressFunc) (Result, error) {
	if byCommit || start.Kind == bisect.Commit || end.Kind == bisect.Commit {
		// A nightly bound is bridged to the commit its channel was cut from.
		loSHA, hiSHA := start.SHA, end.SHA
		if start.Kind == bisect.Nightly && c.Oracle != nil {
			sha, err := c.subjectSHAOfNightly(ctx, start)
			if err != nil {
				return Result{}, err
			}
			loSHA = sha
		}
		if end.Kind == bisect.Nightly && c.Oracle != nil {
			sha, err := c.subjectSHAOfNightly(ctx, end)
			if err != nil {
				return Result{}, err
			}
			hiSHA = sha
		}
		res, err := RunPhase2(ctx, c, loSHA, hiSHA, progress)
		if err != nil {
			return Result{}, err
		}
		out := Result{Phase1: res}
		if out.Phase1.Hi.Kind == bisect.Commit {
			if commit, err := c.oracleCommit(ctx, out.Phase1.Hi.SHA); err == nil {
				phase3, _ := RunPhase3(ctx, c, commit, progress)
				out.Phase3 = phase3
			}
		}
		return out, nil
	}

	phase1, err := RunPhase1(ctx, c, start, end, progress)
	if err != nil {
		return Result{}, err
	}
	result := Result{Phase1: phase1}

	if phase1.Unresolvable || !EligibleForPhase2(phase1.Lo, phase1.Hi, today) || c.Oracle == nil {
		return result, nil
	}

	loSHA, loErr := c.subjectSHAOfNightly(ctx, phase1.Lo)
	hiSHA, hiErr := c.subjectSHAOfNightly(ctx, phase1.Hi)
	if loErr != nil || hiErr != nil {
		// Oracle backend failure: fall back to reporting the nightly
		// range only (spec.md §7).
		return result, nil
	}

	phase2, err := RunPhase2(ctx, c, loSHA, hiSHA, progress)
	if err != nil {
		return result, nil
	}
	result.Phase2 = &phase2

	if !phase2.Unresolvable && phase2.Hi.Kind == bisect.Commit {
		if commit, err := c.oracleCommit(ctx, phase2.Hi.SHA); err == nil {
			phase3, _ := RunPhase3(ctx, c, commit, progress)
			result.Phase3 = phase3
		}
	}
	return result, nil
}

// subjectSHAOfNightly resolves the commit a given nightly's channel was
// cut from, via the oracle's CommitForNightly lookup.
func (c *Config) subjectSHAOfNightly(ctx context.Context, point bisect.BuildPoint) (string, error) {
	return c.Oracle.CommitForNightly(ctx, point.Date)
}

func (c *Config) oracleCommit(ctx context.Context, sha string) (oracle.Commit, error) {
	subject, err := c.Oracle.SubjectLineOf(ctx, sha)
	if err != nil {
		return oracle.Commit{}, err
	}
	_, date, err := c.Oracle.IsOnMaster(ctx, sha)
	if err != nil {
		return oracle.Commit{}, err
	}
	return oracle.Commit{SHA: sha, AuthorDate: date, Subject: subject}, nil
}
