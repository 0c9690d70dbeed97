// Package report renders the end-of-run text summary spec.md §6 calls
// "Report format": the engine version and host, the narrowed baseline /
// regressed pair of each phase that ran, the subject line and sub-PRs of
// a rollup commit, and an exact re-invocation line. The subject line of
// a non-rollup regressing commit and the per-probe trace are not printed.
//
// Grounded on cmd/distri/gc.go's plain fmt.Fprintf(os.Stderr, ...)
// reporting style and cmd/distri/bump.go's re-serialization of mutated
// metadata back into a human-editable form, used here to re-render the
// run's effective flags as a copy-pasteable command.
package report

import (
	"fmt"
	"io"
	"strings"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/orchestrator"
)

// Invocation captures the flags a run was started with, so the report
// can print an exact reproduction command (spec.md §4.7 "a copy-pasteable
// command that reproduces the run").
type Invocation struct {
	Program string
	Args    []string
}

// String quotes each argument only when it contains a space, a tab, or a
// quote character, matching
// the teacher's bump.go re-serialization style (minimal quoting, not a
// full shell-escaping routine).
func (inv Invocation) String() string {
	var b strings.Builder
	b.WriteString(inv.Program)
	for _, a := range inv.Args {
		b.WriteByte(' ')
		if strings.ContainsAny(a, " \t\"'") {
			fmt.Fprintf(&b, "%q", a)
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}

// Write renders result to w. engineVersion and host are included verbatim
// so a bug report carries exactly what produced it.
func Write(w io.Writer, engineVersion, host string, result orchestrator.Result, inv Invocation) {
	fmt.Fprintf(w, "cargo-bisect-rustc %s (host %s)\n\n", engineVersion, host)

	writePhase(w, "nightly bisection", result.Phase1)
	if result.Phase2 != nil {
		fmt.Fprintln(w)
		writePhase(w, "per-commit bisection", *result.Phase2)
	}
	if result.Phase3 != nil {
		fmt.Fprintln(w)
		writeRollup(w, *result.Phase3)
	}

	fmt.Fprintf(w, "\nreproduce with:\n  %s\n", inv.String())
}

func writePhase(w io.Writer, label string, p orchestrator.PhaseResult) {
	if p.Unresolvable {
		fmt.Fprintf(w, "%s: region unresolvable between %s and %s (every candidate in between was skipped)\n",
			label, pointLabel(p.Lo), pointLabel(p.Hi))
		return
	}
	fmt.Fprintf(w, "%s narrowed to:\n", label)
	fmt.Fprintf(w, "  baseline:  %s\n", pointLabel(p.Lo))
	fmt.Fprintf(w, "  regressed: %s\n", pointLabel(p.Hi))
}

func writeRollup(w io.Writer, r orchestrator.RollupResult) {
	fmt.Fprintf(w, "regressing commit is a rollup: %s\n", r.RollupCommit.SHA)
	if r.RollupCommit.Subject != "" {
		fmt.Fprintf(w, "  %s\n", r.RollupCommit.Subject)
	}
	if len(r.SubPRs) > 0 {
		prs := make([]string, len(r.SubPRs))
		for i, n := range r.SubPRs {
			prs[i] = fmt.Sprintf("#%d", n)
		}
		fmt.Fprintf(w, "sub-PRs: %s\n", strings.Join(prs, ", "))
	}
	fmt.Fprintln(w, "sub-PRs reported unnarrowed")
}

func pointLabel(p bisect.BuildPoint) string {
	return fmt.Sprintf("%s (%s)", p.Key(), p.String())
}
