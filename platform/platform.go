package platform

import (
	"context"
	"errors"
	"fmt"
)

// Platform identifies one of the execution environments shipcheck can
// validate delivery scripts on.
type Platform string

const (
	// Windows is a native Windows host.
	Windows Platform = "windows"

	// WSL is the Windows Subsystem for Linux, either hosting the current
	// process or reachable from a Windows host via wsl.exe.
	WSL Platform = "wsl"

	// Linux is a native, non-WSL Linux host.
	Linux Platform = "linux"
)

// Platforms returns all supported platforms in a fixed order.
func Platforms() []Platform {
	return []Platform{Windows, WSL, Linux}
}

// ParsePlatform converts a string such as "wsl" into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case Windows, WSL, Linux:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// ScriptType classifies a delivery script by the interpreter family that
// launches it.
type ScriptType string

const (
	Batch      ScriptType = "batch"
	PowerShell ScriptType = "powershell"
	Shell      ScriptType = "shell"
	Python     ScriptType = "python"
)

// ScriptTypes returns all known script types in a fixed order.
func ScriptTypes() []ScriptType {
	return []ScriptType{Batch, PowerShell, Shell, Python}
}

// Supports reports whether platform p can execute scripts of type t.
// Windows runs batch, PowerShell and Python scripts; WSL and Linux run
// shell and Python scripts.
func Supports(p Platform, t ScriptType) bool {
	switch p {
	case Windows:
		return t == Batch || t == PowerShell || t == Python
	case WSL, Linux:
		return t == Shell || t == Python
	}
	return false
}

// Script describes a single delivery script to execute.
type Script struct {
	// Path is the script's location in the current host's path convention.
	// WSL dispatch from a Windows host translates it to a /mnt path.
	Path string

	// Type selects the interpreter family used to launch the script.
	Type ScriptType
}

// Adapter executes delivery scripts on one specific platform.
// Implementations hold no per-call state and are safe for concurrent use.
type Adapter interface {
	// Platform returns the platform this adapter executes on.
	Platform() Platform

	// Available reports whether this adapter's platform is the environment
	// the current process actually runs in. Exactly one adapter reports
	// true on any supported host: a WSL guest is WSL, never Linux.
	Available() bool

	// ExecuteScript runs a script with extra arguments and captures its
	// outcome. Operational failures (spawn errors, timeouts, non-zero
	// exits) are encoded into the ExecResult, never returned as errors.
	// The only error is an *UnsupportedScriptTypeError, raised before
	// anything is spawned.
	ExecuteScript(ctx context.Context, script Script, args []string) (*ExecResult, error)

	// CheckDependencies probes each named tool independently and never
	// fails as a whole; unresolved tools are reported in their check.
	CheckDependencies(ctx context.Context, names []string) []DependencyCheck

	// EnvironmentInfo describes the platform's execution environment.
	// The result is recomputed on every call, never cached.
	EnvironmentInfo(ctx context.Context) *EnvironmentInfo
}

// Sentinel errors returned by the platform package.
var (
	// ErrUnknownPlatform indicates a platform name that shipcheck does not know.
	ErrUnknownPlatform = errors.New("platform: unknown platform")

	// ErrNotRegistered indicates a platform with no adapter in the manager's table.
	ErrNotRegistered = errors.New("platform: no adapter registered")

	// ErrUnsupportedScriptType indicates a script type the target platform cannot run.
	ErrUnsupportedScriptType = errors.New("platform: unsupported script type")
)

// UnsupportedScriptTypeError is returned by ExecuteScript when the script's
// type cannot run on the adapter's platform. It wraps
// ErrUnsupportedScriptType so that errors.Is(err, ErrUnsupportedScriptType)
// still works.
type UnsupportedScriptTypeError struct {
	// Platform is the platform that rejected the script.
	Platform Platform
	// Type is the rejected script type.
	Type ScriptType
}

func (e *UnsupportedScriptTypeError) Error() string {
	return fmt.Sprintf("%s: %q on %s", ErrUnsupportedScriptType.Error(), e.Type, e.Platform)
}

func (e *UnsupportedScriptTypeError) Unwrap() error {
	return ErrUnsupportedScriptType
}
