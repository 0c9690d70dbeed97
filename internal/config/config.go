// Package config captures the engine's environment-variable layer.
// Compiled-in defaults are overridden by these variables, which are in
// turn overridden by CLI flags (see cmd/cargo-bisect-rustc/main.go).
package config

import (
	"os"
	"path/filepath"
)

// SrcRepoPath is the local rust-lang/rust checkout used by the "checkout"
// source-repo oracle backend. Empty means the backend is unavailable.
var SrcRepoPath = os.Getenv("SRC_REPO_PATH")

// APIToken authenticates the "github" source-repo oracle backend against
// the GitHub API, raising its otherwise very low unauthenticated rate
// limit.
var APIToken = os.Getenv("API_TOKEN")

// ToolchainHome is the root directory engine-managed toolchains are
// installed under and registered from.
var ToolchainHome = findToolchainHome()

func findToolchainHome() string {
	if v := os.Getenv("TOOLCHAIN_HOME"); v != "" {
		return v
	}
	return os.ExpandEnv(filepath.Join("$HOME", ".rustup", "toolchains"))
}
