package bisect

import "fmt"

// EngineVersion is reported in the final report.
// Bump it whenever the report format or CLI surface changes in a way a
// user-facing changelog would need to mention.
const EngineVersion = "0.7.0"

// ReservedPrefix begins the name of every toolchain this engine creates.
// A toolchain whose name does not start with this prefix must never be
// deleted by this engine (see internal/toolchain).
const ReservedPrefix = "bisector"

// UserAgent returns "cargo-bisect-rustc/<EngineVersion>". The archive
// downloads and the GitHub client do not send it; each uses its own
// library's default User-Agent.
func UserAgent() string {
	return fmt.Sprintf("cargo-bisect-rustc/%s", EngineVersion)
}
