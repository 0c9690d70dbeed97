// Package toolchain installs and registers one candidate compiler as a
// named, on-disk toolchain, and guarantees its removal through a scoped
// handle.
//
// Grounded on the teacher's cmd/distri/fuse.go acquire/release pairing
// (Mount returns a join function that must eventually run) and
// internal/oninterrupt's cleanup-callback registration, combined with
// cmd/distri/install.go's use of github.com/google/renameio for durable,
// atomic file placement and cmd/autobuilder/autobuilder.go's
// exec.CommandContext subprocess wrapping for shelling out to the host
// toolchain manager (rustup).
package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	bisect "github.com/rust-lang/cargo-bisect-rustc"
	"github.com/rust-lang/cargo-bisect-rustc/internal/archive"
	"github.com/rust-lang/cargo-bisect-rustc/internal/catalog"
	"github.com/rust-lang/cargo-bisect-rustc/internal/config"
	"github.com/rust-lang/cargo-bisect-rustc/internal/oninterrupt"
)

// ErrInstallConflict describes a pre-existing same-named toolchain
// (spec.md §4.3 "InstallConflict"). Acquire does not return it: without
// --force-install it reuses the existing toolchain as-is.
type ErrInstallConflict struct{ Name string }

func (e *ErrInstallConflict) Error() string {
	return fmt.Sprintf("toolchain %s already exists (pass --force-install to overwrite)", e.Name)
}

// meta is written into every installed toolchain directory so a later
// `--install` run (or a crashed run's next invocation) can tell what a
// reserved-prefix directory actually is before touching it.
type meta struct {
	Point string `json:"point"`
	Host  string `json:"host"`
}

// Handle is a scoped, single-use install: Acquire extracts and registers,
// Release deregisters and deletes. Release is idempotent and safe to call
// more than once (interrupt handling and normal cleanup can both fire).
type Handle struct {
	Name     string
	Dir      string
	preserve bool

	mu       sync.Mutex
	released bool
}

// Acquire installs point as a toolchain named per BuildPoint.ToolchainName
// and registers it with rustup. The returned Handle's Release must run on
// every exit path; callers typically do:
//
//	h, err := toolchain.Acquire(ctx, point, opts, root, preserve, forceInstall)
//	if err != nil { return err }
//	defer h.Release()
func Acquire(ctx context.Context, point bisect.BuildPoint, opts catalog.Options, root catalog.Root, preserve, forceInstall bool) (*Handle, error) {
	name := point.ToolchainName(opts.Host)
	if !strings.HasPrefix(name, bisect.ReservedPrefix) {
		// Can only happen if BuildPoint.ToolchainName is changed to stop
		// prefixing; guard here too since Release's safety invariant
		// depends on it.
		return nil, xerrors.Errorf("toolchain: computed name %q does not carry the reserved prefix", name)
	}
	dir := filepath.Join(config.ToolchainHome, name)

	if _, err := os.Stat(dir); err == nil {
		if !forceInstall {
			// Open Question (b): a pre-existing same-named toolchain is
			// reused as-is; the reserved name already encodes the exact
			// BuildPoint+host it was built for, so there is nothing to
			// reconcile.
			return &Handle{Name: name, Dir: dir, preserve: true}, nil
		}
		if err := deregister(ctx, name); err != nil {
			return nil, xerrors.Errorf("toolchain: deregistering existing %s: %w", name, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			return nil, xerrors.Errorf("toolchain: removing existing %s: %w", name, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, xerrors.Errorf("toolchain: stat %s: %w", dir, err)
	}

	desc, err := catalog.Build(point, opts, root)
	if err != nil {
		return nil, err
	}

	tmp, err := os.MkdirTemp(config.ToolchainHome, ".bisect-install-*")
	if err != nil {
		return nil, xerrors.Errorf("toolchain: %w", err)
	}
	cleanTmp := true
	defer func() {
		if cleanTmp {
			os.RemoveAll(tmp)
		}
	}()

	if err := archive.FetchAll(ctx, desc.Tasks, tmp); err != nil {
		return nil, err
	}

	if err := writeMeta(tmp, meta{Point: point.String(), Host: opts.Host}); err != nil {
		return nil, err
	}

	// Directory relocation is atomic via os.Rename within the same
	// filesystem (TOOLCHAIN_HOME), the same temp-then-rename discipline
	// renameio applies at the single-file level in writeMeta.
	if err := os.Rename(tmp, dir); err != nil {
		return nil, xerrors.Errorf("toolchain: relocating into place: %w", err)
	}
	cleanTmp = false

	if err := register(ctx, name, dir); err != nil {
		os.RemoveAll(dir)
		return nil, xerrors.Errorf("toolchain: registering %s: %w", name, err)
	}

	h := &Handle{Name: name, Dir: dir, preserve: preserve}
	oninterrupt.Register(func() { h.Release() })
	bisect.RegisterAtExit(h.Release)
	return h, nil
}

func writeMeta(dir string, m meta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return renameio.WriteFile(filepath.Join(dir, ".bisect-meta.json"), b, 0644)
}

// Release deregisters and deletes the toolchain unless it is marked for
// preservation. It is idempotent.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	if h.preserve {
		return nil
	}
	if !strings.HasPrefix(h.Name, bisect.ReservedPrefix) {
		// Safety invariant (spec.md data model): never delete a toolchain
		// this engine did not create.
		return xerrors.Errorf("toolchain: refusing to delete %q: missing reserved prefix", h.Name)
	}
	ctx := context.Background()
	if err := deregister(ctx, h.Name); err != nil {
		return xerrors.Errorf("toolchain: deregistering %s: %w", h.Name, err)
	}
	if err := os.RemoveAll(h.Dir); err != nil {
		return xerrors.Errorf("toolchain: removing %s: %w", h.Dir, err)
	}
	return nil
}

// Preserve marks the handle to be kept on Release (used for --install and
// for a probe the user asked to keep with --preserve).
func (h *Handle) Preserve() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preserve = true
}

func register(ctx context.Context, name, dir string) error {
	cmd := exec.CommandContext(ctx, "rustup", "toolchain", "link", name, dir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return xerrors.Errorf("%v: %w", cmd.Args, err)
	}
	return nil
}

func deregister(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, "rustup", "toolchain", "uninstall", name)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return xerrors.Errorf("%v: %w", cmd.Args, err)
	}
	return nil
}
