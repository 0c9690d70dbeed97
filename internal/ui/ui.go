// Package ui renders bisection progress to the console: one line per
// probe when the output stream (normally stderr) is a pipe or log file,
// and an overwritten status line when it's an interactive terminal.
//
// mattn/go-isatty is a direct teacher dependency that no file in the
// teacher's own tree actually imports (DESIGN.md records this honestly);
// it is wired in here for the terminal-vs-pipe rendering decision, the
// same role it plays across the broader example corpus's CLIs.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	search "github.com/rust-lang/cargo-bisect-rustc/internal/bisect"
)

// Progress renders one line per probe to w. On an interactive terminal it
// overwrites the previous line with \r; otherwise (pipes, log files,
// CI) it appends a newline per event so nothing is lost to truncation.
type Progress struct {
	w           io.Writer
	interactive bool
	lastLen     int
}

// NewProgress detects whether w is a terminal via isatty and returns a
// renderer tuned for that case. w is almost always os.Stderr so captured
// stdout stays clean for piping.
func NewProgress(w *os.File) *Progress {
	return &Progress{w: w, interactive: isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())}
}

// Func returns a search.ProgressFunc bound to this renderer.
func (p *Progress) Func() search.ProgressFunc {
	return func(ev search.Event) {
		line := fmt.Sprintf("probe %d: %s (~%d step(s) remaining)", ev.Step.Index, ev.Step.Outcome, ev.RemainingSteps)
		if p.interactive {
			pad := p.lastLen - len(line)
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(p.w, "\r%s%*s", line, pad, "")
			p.lastLen = len(line)
			return
		}
		fmt.Fprintln(p.w, line)
	}
}

// Done finishes an interactive progress line with a trailing newline so
// subsequent output doesn't collide with the last overwritten line.
func (p *Progress) Done() {
	if p.interactive && p.lastLen > 0 {
		fmt.Fprintln(p.w)
	}
}
