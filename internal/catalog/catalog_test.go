package catalog

import (
	"strings"
	"testing"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
)

func TestBuildNightlyURLs(t *testing.T) {
	point := bisect.NightlyPoint(time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC))
	opts := Options{Host: "x86_64-unknown-linux-gnu"}
	d, err := Build(point, opts, DefaultRoot)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.PointKey != "nightly-2018-07-30" {
		t.Errorf("PointKey = %q", d.PointKey)
	}
	// rustc, rust-std, cargo: three tasks for a plain nightly probe.
	if len(d.Tasks) != 3 {
		t.Fatalf("Tasks = %d, want 3: %+v", len(d.Tasks), d.Tasks)
	}
	for _, task := range d.Tasks {
		if !strings.HasPrefix(task.URL, DefaultRoot.DistRoot+"/2018-07-30/") {
			t.Errorf("task URL %q does not start under the dated dist root", task.URL)
		}
		if task.Compression != XZ {
			t.Errorf("task.Compression = %v, want XZ", task.Compression)
		}
	}
}

func TestBuildWithoutCargo(t *testing.T) {
	point := bisect.NightlyPoint(time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC))
	opts := Options{Host: "x86_64-unknown-linux-gnu", WithoutCargo: true}
	d, err := Build(point, opts, DefaultRoot)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, task := range d.Tasks {
		if strings.Contains(task.URL, "cargo-nightly") {
			t.Errorf("Build with WithoutCargo still produced a cargo task: %q", task.URL)
		}
	}
}

func TestBuildCommitURL(t *testing.T) {
	point := bisect.CommitPoint("abc123", time.Time{})
	opts := Options{Host: "x86_64-unknown-linux-gnu"}
	d, err := Build(point, opts, DefaultRoot)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, task := range d.Tasks {
		if !strings.HasPrefix(task.URL, DefaultRoot.CIRoot+"/abc123/") {
			t.Errorf("commit task URL %q does not start under the CI root", task.URL)
		}
	}
}

func TestBuildCommitAltURL(t *testing.T) {
	point := bisect.CommitPoint("abc123", time.Time{})
	opts := Options{Host: "x86_64-unknown-linux-gnu", Alt: true}
	d, err := Build(point, opts, DefaultRoot)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, task := range d.Tasks {
		if !strings.Contains(task.URL, "-alt.") {
			t.Errorf("alt commit task URL %q missing -alt suffix", task.URL)
		}
	}
}

func TestBuildRequiresHost(t *testing.T) {
	_, err := Build(bisect.NightlyPoint(time.Now()), Options{}, DefaultRoot)
	if err == nil {
		t.Fatalf("Build without Host: expected error, got none")
	}
}

func TestBuildCrossTarget(t *testing.T) {
	point := bisect.NightlyPoint(time.Date(2018, 7, 30, 0, 0, 0, 0, time.UTC))
	opts := Options{Host: "x86_64-unknown-linux-gnu", Target: "aarch64-unknown-linux-gnu"}
	d, err := Build(point, opts, DefaultRoot)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// rustc, rust-std (host), cargo, rust-std (cross target): four tasks.
	if len(d.Tasks) != 4 {
		t.Fatalf("Tasks = %d, want 4: %+v", len(d.Tasks), d.Tasks)
	}
}
