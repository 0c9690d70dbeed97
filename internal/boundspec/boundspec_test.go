package boundspec

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := Parse("2018-07-30")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind != DateKind {
		t.Fatalf("Kind = %v, want DateKind", got.Kind)
	}
	want := time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
}

func TestParseReleaseTag(t *testing.T) {
	for _, s := range []string{"1.34.0", "v1.34.0"} {
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got.Kind != ReleaseTagKind {
			t.Errorf("Parse(%q).Kind = %v, want ReleaseTagKind", s, got.Kind)
		}
		if got.Tag != "v1.34.0" {
			t.Errorf("Parse(%q).Tag = %q, want v1.34.0", s, got.Tag)
		}
	}
}

func TestParseSHA(t *testing.T) {
	got, err := Parse("a1b2c3d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Kind != ShaKind {
		t.Fatalf("Kind = %v, want ShaKind", got.Kind)
	}
	if got.SHA != "a1b2c3d" {
		t.Errorf("SHA = %q, want a1b2c3d", got.SHA)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-bound", "1.2.3.4.5"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error, got none", s)
		}
	}
}

func TestLessOrdersBySemver(t *testing.T) {
	a := BoundSpec{Kind: ReleaseTagKind, Tag: "v1.33.0"}
	b := BoundSpec{Kind: ReleaseTagKind, Tag: "v1.34.0"}
	if !Less(a, b) {
		t.Errorf("Less(1.33.0, 1.34.0) = false, want true")
	}
}

func TestTableBranchDate(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if _, err := table.BranchDate("this-release-does-not-exist"); err == nil {
		t.Errorf("BranchDate(unknown tag): expected error, got none")
	}
}

func TestLoadParsesMinimalTable(t *testing.T) {
	table, err := Load([]byte(`
release {
  version: "1.34.0"
  branch_date: "2019-03-01"
}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, err := table.BranchDate("1.34.0")
	if err != nil {
		t.Fatalf("BranchDate: %v", err)
	}
	want := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("BranchDate = %v, want %v", d, want)
	}
	// Lookups are insensitive to a leading "v".
	if _, err := table.BranchDate("v1.34.0"); err != nil {
		t.Errorf("BranchDate(v-prefixed): %v", err)
	}
}
