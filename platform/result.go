package platform

import "time"

// ExecResult holds the outcome of a single script execution. One is produced
// per ExecuteScript call and owned by the caller afterwards.
type ExecResult struct {
	// ExitCode is the script's exit code. -1 indicates the script never
	// produced one: it could not be spawned, timed out, or was canceled.
	ExitCode int

	// Stdout contains the captured standard output of the script.
	Stdout string

	// Stderr contains the captured standard error of the script.
	// Operational failures (spawn errors, timeouts) are reported here
	// rather than as Go errors.
	Stderr string

	// Duration is the wall-clock time the script took to execute.
	Duration time.Duration

	// PeakMemory is the script process's peak resident memory in bytes,
	// sampled best-effort from the OS. 0 means the host could not report it.
	PeakMemory int64

	// Truncated indicates whether the output was truncated due to size limits.
	Truncated bool
}

// Success reports whether the script exited cleanly.
func (r *ExecResult) Success() bool {
	return r.ExitCode == 0
}

// DependencyCheck reports whether one external tool is usable on a platform.
// Checks are independent: a failed probe never affects other tools.
type DependencyCheck struct {
	// Name is the tool that was probed (e.g., "git", "python3").
	Name string

	// Available reports whether the tool resolved on the platform's PATH.
	Available bool

	// Version is the tool's self-reported version, when it could be probed.
	Version string

	// Message explains a failed resolution or a failed version probe.
	Message string
}

// EnvironmentInfo is a point-in-time description of an execution
// environment. It is recomputed on every call so that live changes, such as
// an interpreter installed mid-session, are visible.
type EnvironmentInfo struct {
	// Platform is the environment this report describes.
	Platform Platform

	// OSVersion is the OS self-description, e.g. "Ubuntu 24.04.1 LTS" or a
	// Windows caption with build number. Empty when undeterminable.
	OSVersion string

	// RuntimeVersion is the version reported by the resolved Python
	// interpreter, the runtime delivery scripts most commonly need.
	RuntimeVersion string

	// ShellVersion is the version reported by the platform's script shell
	// (bash on Linux/WSL, PowerShell on Windows).
	ShellVersion string

	// AvailableCommands lists which of a fixed catalog of commonly needed
	// tools resolve on the platform's PATH.
	AvailableCommands []string
}
