// Command cargo-bisect-rustc bisects Rust compiler builds to find the
// first one exhibiting a behavior regression on a user-supplied
// reproducer.
//
// Grounded on cmd/distri/distri.go's funcmain()/main() split (funcmain
// returns an error, main prints it and sets the exit code), its
// -debug-gated xerrors %+v formatting, and its InterruptibleContext +
// RunAtExit bracketing of the whole run. Unlike distri's multi-verb
// dispatch table, this binary has exactly one job, so there is no verbs
// map here — --install is a mode flag, not a separate verb.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/boundary"
	"github.com/rust-lang/cargo-bisect-rustc/internal/boundspec"
	"github.com/rust-lang/cargo-bisect-rustc/internal/catalog"
	"github.com/rust-lang/cargo-bisect-rustc/internal/classifier"
	"github.com/rust-lang/cargo-bisect-rustc/internal/config"
	"github.com/rust-lang/cargo-bisect-rustc/internal/driver"
	"github.com/rust-lang/cargo-bisect-rustc/internal/hostinfo"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oracle"
	"github.com/rust-lang/cargo-bisect-rustc/internal/orchestrator"
	"github.com/rust-lang/cargo-bisect-rustc/internal/report"
	"github.com/rust-lang/cargo-bisect-rustc/internal/toolchain"
	"github.com/rust-lang/cargo-bisect-rustc/internal/ui"
	"golang.org/x/xerrors"
)

// stringList implements flag.Value for a repeatable -c/--component flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	debug = flag.Bool("debug", false, "format error messages with additional detail")

	start       = flag.String("start", "", "baseline bound (date, release tag, or commit SHA)")
	end         = flag.String("end", "", "regression bound; absent defaults to the latest published nightly")
	byCommit    = flag.Bool("by-commit", false, "force per-commit phase even when bounds are dates")
	access      = flag.String("access", "checkout", "source-repo oracle backend: github or checkout")
	alt         = flag.Bool("alt", false, "select alt-CI artifacts; implies per-commit")
	host        = flag.String("host", "", "host triple (default: detected)")
	target      = flag.String("target", "", "cross std component to install")
	withSrc     = flag.Bool("with-src", false, "alias for the rust-src component bundle")
	withDev     = flag.Bool("with-dev", false, "alias for the rustc-dev component bundle")
	withoutCargo = flag.Bool("without-cargo", false, "do not install cargo")
	script      = flag.String("script", "", "use this script as the probe command instead of the default build")
	timeoutSecs = flag.Int("timeout", 0, "per-probe wall-clock timeout, in seconds (0 = none)")
	prompt      = flag.Bool("prompt", false, "interactive classification")
	regress     = flag.String("regress", string(classifier.PolicyError), "classifier policy: error, success, ice, non-ice, non-error")
	termOld     = flag.String("term-old", "", "custom label for Baseline")
	termNew     = flag.String("term-new", "", "custom label for Regressed")
	preserve    = flag.Bool("preserve", false, "skip cleanup of installed toolchains")
	preserveTarget = flag.Bool("preserve-target", false, "skip cleanup of the build directory between probes")
	forceInstall = flag.Bool("force-install", false, "overwrite a pre-existing same-named toolchain")
	install     = flag.String("install", "", "install the named artifact and exit (no bisect)")
	pretendStable = flag.Bool("pretend-to-be-stable", false, "make the installed compiler report a stable-like version")
	testDir     = flag.String("test-dir", "", "working directory for probes (default: current directory)")
	verbose     = flag.Bool("verbose", false, "print commands as they are run")
	verbosity   = flag.Int("v", 0, "verbosity level (use -v=2 for -vv)")

	components stringList
)

func init() {
	flag.Var(&components, "c", "extra component to install (repeatable)")
	flag.Var(&components, "component", "extra component to install (repeatable)")
}

func funcmain() error {
	flag.Parse()
	// flag.Parse stops at "--" and Args() returns everything after it:
	// the project-build or script argument tail (spec.md §6
	// "[-- <command-args>...]").
	tail := flag.Args()

	hostTriple := *host
	if hostTriple == "" {
		detected, err := hostinfo.Detect()
		if err != nil {
			return err
		}
		hostTriple = detected
	}

	policy := classifier.Policy(*regress)
	if !policy.Valid() {
		return &classifier.ErrUnknownPolicy{Policy: policy}
	}

	ctx, canc := bisect.InterruptibleContext()
	defer canc()

	oc, err := buildOracle(ctx, *access)
	if err != nil {
		return err
	}
	releases, err := boundspec.LoadDefault()
	if err != nil {
		return err
	}

	extra := append([]string{}, components...)
	if *withSrc {
		extra = append(extra, "rust-src")
	}
	if *withDev {
		extra = append(extra, "rustc-dev")
	}

	// --alt implies per-commit (spec.md §6): alt-CI artifacts are only
	// published per-commit, never per-nightly.
	effectiveByCommit := *byCommit || *alt

	catalogOpts := catalog.Options{
		Host:            hostTriple,
		Target:          *target,
		ExtraComponents: extra,
		WithoutCargo:    *withoutCargo,
		Alt:             *alt,
	}

	if *install != "" {
		return runInstallOnly(ctx, *install, catalogOpts, oc, releases)
	}

	labels := classifier.DefaultLabels
	if *termOld != "" {
		labels.Baseline = *termOld
	}
	if *termNew != "" {
		labels.Regressed = *termNew
	}

	cfg := &orchestrator.Config{
		CatalogOptions: catalogOpts,
		Root:           catalog.DefaultRoot,
		Driver: driver.Config{
			Script:         *script,
			CommandTail:    tail,
			WorkDir:        *testDir,
			TargetDir:      targetDir(*testDir),
			PreserveTarget: *preserveTarget,
			PretendStable:  *pretendStable,
			Timeout:        time.Duration(*timeoutSecs) * time.Second,
			Verbose:        *verbose || *verbosity > 0,
		},
		Policy:       policy,
		Labels:       labels,
		Prompt:       *prompt,
		Preserve:     *preserve,
		ForceInstall: *forceInstall,
		Oracle:       oc,
		Releases:     releases,
	}

	endSpec, err := resolveBoundOrDefault(ctx, *end, releases, oc, true)
	if err != nil {
		return err
	}
	var startPoint bisect.BuildPoint
	if *start == "" {
		startPoint, err = boundary.ResolveStart(ctx, endSpec, cfg.Probe, boundary.DefaultMaxBackoffNightlies)
	} else {
		startPoint, err = resolveBoundOrDefault(ctx, *start, releases, oc, false)
	}
	if err != nil {
		return err
	}

	if err := boundary.CheckInterval(startPoint, endSpec); err != nil {
		return err
	}

	prog := ui.NewProgress(os.Stderr)
	today := func() bisect.BuildPoint { return boundary.LatestNightly(time.Now()) }
	result, err := orchestrator.Run(ctx, cfg, startPoint, endSpec, effectiveByCommit, today, prog.Func())
	prog.Done()
	if err != nil {
		return err
	}

	inv := report.Invocation{Program: "cargo-bisect-rustc", Args: os.Args[1:]}
	report.Write(os.Stdout, bisect.EngineVersion, hostTriple, result, inv)

	return bisect.RunAtExit()
}

func resolveBoundOrDefault(ctx context.Context, s string, releases *boundspec.Table, oc oracle.Oracle, isEnd bool) (bisect.BuildPoint, error) {
	if s == "" && isEnd {
		return boundary.LatestNightly(time.Now()), nil
	}
	spec, err := boundspec.Parse(s)
	if err != nil {
		return bisect.BuildPoint{}, err
	}
	return boundary.Resolve(ctx, spec, oc, releases, time.Now())
}

func runInstallOnly(ctx context.Context, bound string, opts catalog.Options, oc oracle.Oracle, releases *boundspec.Table) error {
	spec, err := boundspec.Parse(bound)
	if err != nil {
		return err
	}
	point, err := boundary.Resolve(ctx, spec, oc, releases, time.Now())
	if err != nil {
		return err
	}
	// --install implies --preserve: the whole point is to leave the
	// toolchain registered for manual use afterwards (spec.md §6).
	h, err := toolchain.Acquire(ctx, point, opts, catalog.DefaultRoot, true, *forceInstall)
	if err != nil {
		return err
	}
	h.Preserve()
	fmt.Fprintf(os.Stdout, "installed %s as toolchain %s\n", point, h.Name)
	return nil
}

func buildOracle(ctx context.Context, backend string) (oracle.Oracle, error) {
	switch backend {
	case "github":
		return oracle.NewGitHubOracle(ctx, "rust-lang", "rust", config.APIToken), nil
	case "checkout":
		return &oracle.CheckoutOracle{RepoPath: config.SrcRepoPath}, nil
	default:
		return nil, xerrors.Errorf("unknown --access backend %q (want github or checkout)", backend)
	}
}

func targetDir(testDir string) string {
	if testDir == "" {
		testDir = "."
	}
	return testDir + string(os.PathSeparator) + "target"
}

func main() {
	if err := funcmain(); err != nil {
		bisect.RunAtExit()
		if *debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
