package bisecttest

import (
	"context"
	"testing"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
)

func TestOutcomesProbe(t *testing.T) {
	o := Outcomes{bisect.Baseline, bisect.Regressed}
	got, err := o.Probe(context.Background(), 1)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != bisect.Regressed {
		t.Errorf("Probe(1) = %v, want Regressed", got)
	}
}

func TestOutcomesProbeOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Probe out of range: expected panic, got none")
		}
	}()
	Outcomes{bisect.Baseline}.Probe(context.Background(), 5)
}

func TestFakeOracleRangeFirstParent(t *testing.T) {
	f := &FakeOracle{
		Commits: []oracle.Commit{
			{SHA: "a", Subject: "first"},
			{SHA: "b", Subject: "second"},
			{SHA: "c", Subject: "third"},
			{SHA: "d", Subject: "fourth"},
		},
	}
	got, err := f.RangeFirstParent(context.Background(), "a", "c")
	if err != nil {
		t.Fatalf("RangeFirstParent: %v", err)
	}
	if len(got) != 2 || got[0].SHA != "b" || got[1].SHA != "c" {
		t.Fatalf("RangeFirstParent(a, c) = %+v, want [b c]", got)
	}
}

func TestFakeOracleIsOnMaster(t *testing.T) {
	date := time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC)
	f := &FakeOracle{
		Commits:    []oracle.Commit{{SHA: "a", AuthorDate: date}},
		MasterSHAs: map[string]bool{"a": true},
	}
	onMaster, got, err := f.IsOnMaster(context.Background(), "a")
	if err != nil || !onMaster {
		t.Fatalf("IsOnMaster(a) = (%v, %v, %v), want (true, _, nil)", onMaster, got, err)
	}
	if !got.Equal(date) {
		t.Errorf("IsOnMaster date = %v, want %v", got, date)
	}
	onMaster, _, err = f.IsOnMaster(context.Background(), "unknown")
	if err != nil || onMaster {
		t.Fatalf("IsOnMaster(unknown) = (%v, _, %v), want (false, nil)", onMaster, err)
	}
}

func TestFakeOracleCommitForNightly(t *testing.T) {
	f := &FakeOracle{NightlyCommits: map[string]string{"2018-07-30": "abc123"}}
	got, err := f.CommitForNightly(context.Background(), time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CommitForNightly: %v", err)
	}
	if got != "abc123" {
		t.Errorf("CommitForNightly = %q, want abc123", got)
	}
	if _, err := f.CommitForNightly(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatalf("CommitForNightly(unknown date): expected error, got none")
	}
}
