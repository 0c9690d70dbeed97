// Package catalog turns a BuildPoint + host/target/component selection
// into the concrete set of archives to download and where their contents
// land on disk (spec.md §4.2).
//
// Grounded on the teacher's distri.go Repo (a Path that is either a local
// filesystem prefix or an http(s):// root) and cmd/distri/install.go's
// repoReader, which builds one request per artifact off that root.
package catalog

import (
	"fmt"
	"strings"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
)

// Compression identifies how a download task's body is compressed.
type Compression int

const (
	// XZ archives are decompressed by shelling out to the system xz
	// binary (internal/archive) — no pure-Go xz decoder exists anywhere
	// in the example corpus this engine was grounded on.
	XZ Compression = iota
	// Gzip archives are decompressed with klauspost/pgzip, the same
	// library the teacher's initrd.go uses for large tarballs.
	Gzip
)

func (c Compression) Extension() string {
	if c == Gzip {
		return "tar.gz"
	}
	return "tar.xz"
}

// Root selects which upstream artifact tree a BuildPoint's components are
// published under.
type Root struct {
	// DistRoot serves dated nightlies: <DistRoot>/<date>/<component>...
	DistRoot string
	// CIRoot serves per-commit CI artifacts: <CIRoot>/<sha>/<component>...
	CIRoot string
}

// DefaultRoot is the public rust-lang artifact layout.
var DefaultRoot = Root{
	DistRoot: "https://static.rust-lang.org/dist",
	CIRoot:   "https://ci-artifacts.rust-lang.org/rustc-builds",
}

// Options selects which components an artifact descriptor covers.
type Options struct {
	Host             string
	Target           string // "" unless cross-compiling
	ExtraComponents  []string
	WithoutCargo     bool
	Alt              bool
	PreferGzip       bool // fetch .tar.gz instead of .tar.xz for every component; no per-file fallback
}

// components returns rustc + std + cargo (unless opted out) + the
// explicit extras + a cross std component when Target is set, in a
// stable order so the produced URL list is deterministic (useful for
// tests and for --verbose echoing).
func (o Options) components() []string {
	comps := []string{"rustc", "rust-std-" + o.Host}
	if !o.WithoutCargo {
		comps = append(comps, "cargo")
	}
	comps = append(comps, o.ExtraComponents...)
	if o.Target != "" && o.Target != o.Host {
		comps = append(comps, "rust-std-"+o.Target)
	}
	return comps
}

// DownloadTask is one archive to fetch and unpack.
type DownloadTask struct {
	URL         string
	Compression Compression
	// InnerRoot is the single top-level directory inside the archive
	// (e.g. "rustc-nightly-x86_64-unknown-linux-gnu"); its contents are
	// relocated to the toolchain root, stripping this prefix.
	InnerRoot string
}

// Descriptor is the full set of downloads needed to install one
// BuildPoint, plus the toolchain point-key it installs under.
type Descriptor struct {
	PointKey string
	Tasks    []DownloadTask
}

// Build computes the Descriptor for point under opts, against root.
func Build(point bisect.BuildPoint, opts Options, root Root) (Descriptor, error) {
	if opts.Host == "" {
		return Descriptor{}, fmt.Errorf("catalog: host triple is required")
	}
	comp := XZ
	if opts.PreferGzip {
		comp = Gzip
	}
	d := Descriptor{PointKey: point.Key()}
	for _, c := range opts.components() {
		url, err := componentURL(point, c, opts, root, comp)
		if err != nil {
			return Descriptor{}, err
		}
		d.Tasks = append(d.Tasks, DownloadTask{
			URL:         url,
			Compression: comp,
			InnerRoot:   fmt.Sprintf("%s-nightly-%s", c, opts.Host),
		})
	}
	return d, nil
}

func componentURL(point bisect.BuildPoint, component string, opts Options, root Root, comp Compression) (string, error) {
	file := fmt.Sprintf("%s-nightly-%s.%s", component, opts.Host, comp.Extension())
	switch point.Kind {
	case bisect.Nightly:
		date := point.Date.Format("2006-01-02")
		return strings.Join([]string{root.DistRoot, date, file}, "/"), nil
	case bisect.Commit:
		if opts.Alt {
			file = fmt.Sprintf("rustc-nightly-%s-alt.%s", opts.Host, comp.Extension())
			return strings.Join([]string{root.CIRoot, point.SHA, opts.Host, file}, "/"), nil
		}
		return strings.Join([]string{root.CIRoot, point.SHA, file}, "/"), nil
	default:
		return "", fmt.Errorf("catalog: unknown BuildPoint kind %v", point.Kind)
	}
}

// NightlyIndexURL returns the URL of the dist directory for the given
// date (<DistRoot>/<date>/). The boundary resolver does not consult it:
// its backward search probes each candidate nightly directly.
func NightlyIndexURL(date string, root Root) string {
	return strings.Join([]string{root.DistRoot, date}, "/") + "/"
}
