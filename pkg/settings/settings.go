// Package settings provides build metadata, per-run settings and the
// context helpers used across the tv CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tv"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of a single invocation after flags and the config
// file have been merged.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	KeyMode     string
	NoColor     bool
	Snapshot    bool
	Interactive bool
}

// NewCliParams returns the settings of an interactive CLI run before any
// flag has been applied.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		KeyMode:     "vim",
		Interactive: true,
	}
}

// LogToStderr reports whether logs may go to stderr. Interactive runs own
// the terminal, so they only log to a file.
func (r *Run) LogToStderr() bool {
	return r.LogFile == "" && !r.Interactive
}
