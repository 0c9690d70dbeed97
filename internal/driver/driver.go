// Package driver runs the user's reproducer against one installed
// toolchain and captures its outcome for the classifier.
//
// Grounded on cmd/autobuilder/autobuilder.go's buildctx.run (one
// exec.CommandContext per step, os.Stdout/os.Stderr streaming) combined
// with internal/build/build.go's io.MultiWriter capture-while-streaming
// pattern and its SysProcAttr-based process grouping, used here so a
// timeout can kill the whole process group rather than a single leaked
// child.
package driver

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Config describes one probe invocation.
type Config struct {
	// ToolchainName is the registered name the child sees via the
	// toolchain-override environment variable.
	ToolchainName string
	HostTriple    string

	// Script, if set, is the child to exec; CommandTail is passed to it
	// as arguments. Otherwise the child is the default project-build
	// command ("cargo" + CommandTail, default tail ["build"]).
	Script      string
	CommandTail []string

	WorkDir string
	// TargetDir is a per-run stable directory passed via TARGET_DIR. It
	// is wiped before the probe unless PreserveTarget is set.
	TargetDir      string
	PreserveTarget bool

	// PretendStable makes the candidate toolchain report a stable-like
	// version string to the child (spec.md §6 --pretend-to-be-stable),
	// for reproducers that gate on channel rather than behavior.
	PretendStable bool

	Timeout time.Duration
	Verbose bool
}

// Result is what the classifier consumes: the exit status (or timeout)
// and the interleaved stdout+stderr bytes.
type Result struct {
	TimedOut bool
	// ExitCode is -1 when the process was killed by a signal (including
	// the timeout's own kill) rather than exiting normally.
	ExitCode int
	Output   []byte
}

// Success reports whether the subprocess exited zero. A timed-out probe
// is always a non-success (spec.md §4.4 "a timed-out probe is a
// non-success").
func (r Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

const gracePeriod = 5 * time.Second

// Run execs the configured command with TOOLCHAIN_OVERRIDE naming the
// candidate toolchain and returns its outcome. ctx cancellation (e.g. SIGINT) takes priority
// over the configured timeout.
func Run(ctx context.Context, cfg Config) (Result, error) {
	argv := commandArgv(cfg)

	if cfg.TargetDir != "" && !cfg.PreserveTarget {
		if err := os.RemoveAll(cfg.TargetDir); err != nil {
			return Result{}, xerrors.Errorf("driver: clearing target dir: %w", err)
		}
	}
	if cfg.TargetDir != "" {
		if err := os.MkdirAll(cfg.TargetDir, 0755); err != nil {
			return Result{}, xerrors.Errorf("driver: creating target dir: %w", err)
		}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = cfg.WorkDir
	cmd.Env = append(os.Environ(),
		"TOOLCHAIN_OVERRIDE="+cfg.ToolchainName,
		"BUILD_TARGET="+cfg.HostTriple,
		"TARGET_DIR="+cfg.TargetDir,
	)
	if cfg.PretendStable {
		cmd.Env = append(cmd.Env, "RUSTC_BOOTSTRAP=0", "CFG_DISABLE_UNSTABLE_FEATURES=1")
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var captured bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &captured)
	cmd.Stderr = io.MultiWriter(os.Stderr, &captured)

	if cfg.Verbose {
		os.Stderr.WriteString("+ " + strings.Join(argv, " ") + "\n")
	}

	if err := cmd.Start(); err != nil {
		return Result{}, xerrors.Errorf("driver: spawning %v: %w", argv, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return resultFromWait(err, captured.Bytes()), nil
	case <-runCtx.Done():
		timedOut := cfg.Timeout > 0 && runCtx.Err() == context.DeadlineExceeded
		killProcessGroup(cmd, syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(gracePeriod):
			killProcessGroup(cmd, syscall.SIGKILL)
			<-done
		}
		return Result{TimedOut: timedOut, ExitCode: -1, Output: captured.Bytes()}, nil
	}
}

func commandArgv(cfg Config) []string {
	tail := cfg.CommandTail
	if len(tail) == 0 {
		tail = []string{"build"}
	}
	if cfg.Script != "" {
		return append([]string{cfg.Script}, tail...)
	}
	return append([]string{"cargo"}, tail...)
}

func resultFromWait(err error, output []byte) Result {
	if err == nil {
		return Result{ExitCode: 0, Output: output}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return Result{ExitCode: -1, Output: output}
		}
		return Result{ExitCode: exitErr.ExitCode(), Output: output}
	}
	return Result{ExitCode: -1, Output: output}
}

// killProcessGroup sends sig to the whole process group the child
// started, so a build command that itself forked children (cargo
// spawning rustc, rustc spawning the linker) cannot outlive the probe.
func killProcessGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		cmd.Process.Signal(sig)
		return
	}
	unix.Kill(-pgid, sig)
}
