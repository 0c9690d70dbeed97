// Package orchestrator drives the three bisection phases (nightly →
// per-commit → rollup) described in spec.md §4.7, wiring together the
// catalog, archive, toolchain, driver, classifier, and oracle packages
// behind one probe function that internal/bisect's search and
// internal/boundary's resolver both call into.
//
// Grounded on cmd/autobuilder/autobuilder.go's steps []step + buildctx.run
// staged-execution shape (each phase is a named stage that can be
// skipped) and cmd/distri/update.go's multi-stage "resolve → fetch →
// apply" structure.
package orchestrator

import (
	"context"
	"io"
	"os"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/archive"
	"github.com/rust-lang/cargo-bisect-rustc/internal/boundspec"
	"github.com/rust-lang/cargo-bisect-rustc/internal/catalog"
	"github.com/rust-lang/cargo-bisect-rustc/internal/classifier"
	"github.com/rust-lang/cargo-bisect-rustc/internal/driver"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
	"github.com/rust-lang/cargo-bisect-rustc/internal/toolchain"
	"golang.org/x/xerrors"
)

// CIRetentionDays is the rough window CI keeps per-commit artifacts
// around (spec.md §4.7 phase 2 "about 167 days").
const CIRetentionDays = 167

// Config bundles everything a probe needs to go from a BuildPoint to an
// Outcome, plus everything a phase needs to build its candidate sequence.
type Config struct {
	CatalogOptions catalog.Options
	Root           catalog.Root
	Driver         driver.Config // ToolchainName/HostTriple filled in per probe

	Policy       classifier.Policy
	Labels       classifier.Labels
	Prompt       bool
	Preserve     bool
	ForceInstall bool

	Oracle     oracle.Oracle
	Releases   *boundspec.Table
	MaxBackoff int

	// Stdin/Stdout back --prompt mode; nil defaults to the process's own.
	Stdin  io.Reader
	Stdout io.Writer
}

func (c *Config) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// Result is the consolidated, end-of-run outcome the report renders.
type Result struct {
	Phase1 PhaseResult
	Phase2 *PhaseResult
	Phase3 *RollupResult
}

// PhaseResult is one bisection phase's narrowed range plus the candidate
// sequence it searched. The per-probe trace is not kept here.
type PhaseResult struct {
	Name         string
	Candidates   []bisect.BuildPoint
	Lo, Hi       bisect.BuildPoint
	Unresolvable bool
}

// RollupResult is phase 3's outcome: the rollup commit and its listed
// sub-PRs, reported unnarrowed (see RunPhase3).
type RollupResult struct {
	RollupCommit oracle.Commit
	SubPRs       []int
}

// Probe installs, runs, and classifies point. It degrades missing
// artifacts and exhausted-retry network errors to Skipped (spec.md §7),
// and returns a Fatal-carrying error for corrupted archives and
// subprocess spawn failures.
func (c *Config) Probe(ctx context.Context, point bisect.BuildPoint) (bisect.Outcome, error) {
	handle, err := toolchain.Acquire(ctx, point, c.CatalogOptions, c.Root, c.Preserve, c.ForceInstall)
	if err != nil {
		if degrades(err) {
			return bisect.Skipped, nil
		}
		return bisect.Fatal, xerrors.Errorf("orchestrator: installing %v: %w", point, err)
	}
	defer handle.Release()

	for {
		cfg := c.Driver
		cfg.ToolchainName = handle.Name
		cfg.HostTriple = c.CatalogOptions.Host

		res, err := driver.Run(ctx, cfg)
		if err != nil {
			return bisect.Fatal, xerrors.Errorf("orchestrator: running probe for %v: %w", point, err)
		}

		if c.Prompt {
			decision, err := classifier.Prompt(c.stdin(), c.stdout(), c.Labels, point)
			if err != nil {
				return bisect.Fatal, xerrors.Errorf("orchestrator: prompt: %w", err)
			}
			if decision == classifier.DecisionRetry {
				continue
			}
			return decision.ToOutcome(), nil
		}

		return classifier.Classify(res, c.Policy)
	}
}

// degrades reports whether err is one of the two install failures
// spec.md §7 says degrade a probe to Skipped rather than aborting the
// run: a 404'd artifact, or a network error that survived archive's own
// bounded retries.
func degrades(err error) bool {
	var missing *archive.ErrMissing
	if xerrors.As(err, &missing) {
		return true
	}
	var network *archive.ErrNetwork
	return xerrors.As(err, &network)
}
