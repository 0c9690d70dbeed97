package orchestrator

import (
	"context"
	"testing"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	search "github.com/rust-lang/cargo-bisect-rustc/internal/bisect"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
)

func nightly(y int, m time.Month, d int) bisect.BuildPoint {
	return bisect.NightlyPoint(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestEligibleForPhase2RequiresAdjacentDays(t *testing.T) {
	today := func() bisect.BuildPoint { return nightly(2018, 8, 1) }
	lo := nightly(2018, 7, 29)
	hi := nightly(2018, 7, 31)
	if EligibleForPhase2(lo, hi, today) {
		t.Errorf("EligibleForPhase2: two days apart should not be eligible")
	}
}

func TestEligibleForPhase2AcceptsAdjacentRecentDays(t *testing.T) {
	today := func() bisect.BuildPoint { return nightly(2018, 8, 1) }
	lo := nightly(2018, 7, 29)
	hi := nightly(2018, 7, 30)
	if !EligibleForPhase2(lo, hi, today) {
		t.Errorf("EligibleForPhase2: adjacent recent nightlies should be eligible")
	}
}

func TestEligibleForPhase2RejectsStaleDays(t *testing.T) {
	today := func() bisect.BuildPoint { return nightly(2020, 1, 1) }
	lo := nightly(2018, 7, 29)
	hi := nightly(2018, 7, 30)
	if EligibleForPhase2(lo, hi, today) {
		t.Errorf("EligibleForPhase2: nightlies older than the CI retention window should not be eligible")
	}
}

func TestRunPhase3NonRollupReturnsNil(t *testing.T) {
	commit := oracle.Commit{SHA: "abc123", Subject: "fix a typo"}
	res, err := RunPhase3(context.Background(), &Config{}, commit, nil)
	if err != nil {
		t.Fatalf("RunPhase3: %v", err)
	}
	if res != nil {
		t.Errorf("RunPhase3(non-rollup) = %+v, want nil", res)
	}
}

func TestRunPhase3RollupReportsUnnarrowed(t *testing.T) {
	commit := oracle.Commit{
		SHA:     "abc123",
		Subject: "Auto merge of #1111 #2222 - user:branch, r=reviewer",
		Body:    "Successful merges:\n\n - #1111 (fix foo)\n - #2222 (fix bar)\n",
	}
	c := &Config{}
	probed := false
	res, err := RunPhase3(context.Background(), c, commit, func(search.Event) {
		probed = true
	})
	if err != nil {
		t.Fatalf("RunPhase3: %v", err)
	}
	if res == nil {
		t.Fatalf("RunPhase3(rollup) = nil, want a RollupResult")
	}
	if res.RollupCommit.SHA != "abc123" {
		t.Errorf("RollupCommit.SHA = %q, want abc123", res.RollupCommit.SHA)
	}
	if len(res.SubPRs) != 2 || res.SubPRs[0] != 1111 || res.SubPRs[1] != 2222 {
		t.Errorf("SubPRs = %v, want [1111 2222]", res.SubPRs)
	}
	if probed {
		t.Errorf("RunPhase3: probed a candidate, want no narrowing attempt (no oracle capability exists for per-sub-PR CI identifiers)")
	}
}

func TestConfigStdinStdoutDefaults(t *testing.T) {
	var c Config
	if c.stdin() == nil {
		t.Errorf("stdin(): nil, want os.Stdin default")
	}
	if c.stdout() == nil {
		t.Errorf("stdout(): nil, want os.Stdout default")
	}
}
