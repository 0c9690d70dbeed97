package classifier

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
)

// Decision is a --prompt mode user response.
type Decision int

const (
	DecisionBaseline Decision = iota
	DecisionRegressed
	DecisionSkip
	DecisionRetry
)

// Prompt bypasses the policy table entirely (spec.md §4.4 "the prompt
// mode bypasses the table"): it asks the user directly, using the
// run's Labels, and loops on DecisionRetry without advancing the search.
// Grounded on internal/build/debugshell.go's pattern of dropping into an
// interactive loop and returning the user's decision.
func Prompt(in io.Reader, out io.Writer, labels Labels, point fmt.Stringer) (Decision, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "did %v reproduce the regression? [(o)ld=%s/(n)ew=%s/(s)kip/(r)etry] ", point, labels.Label(bisect.Baseline), labels.Label(bisect.Regressed))
		if !scanner.Scan() {
			return DecisionSkip, scanner.Err()
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "o", "old", "baseline":
			return DecisionBaseline, nil
		case "n", "new", "regressed", "regress":
			return DecisionRegressed, nil
		case "s", "skip":
			return DecisionSkip, nil
		case "r", "retry":
			return DecisionRetry, nil
		default:
			fmt.Fprintln(out, "please answer o, n, s, or r")
		}
	}
}

// ToOutcome maps a non-retry Decision to an Outcome.
func (d Decision) ToOutcome() bisect.Outcome {
	switch d {
	case DecisionBaseline:
		return bisect.Baseline
	case DecisionRegressed:
		return bisect.Regressed
	default:
		return bisect.Skipped
	}
}
