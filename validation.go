package shipcheck

import (
	"github.com/shipcheck/shipcheck/platform"
)

// ExecResult holds the outcome of a single script execution.
// It is an alias for platform.ExecResult.
type ExecResult = platform.ExecResult

// DependencyCheck reports whether one external tool is usable on a platform.
// It is an alias for platform.DependencyCheck.
type DependencyCheck = platform.DependencyCheck

// EnvironmentInfo describes an execution environment.
// It is an alias for platform.EnvironmentInfo.
type EnvironmentInfo = platform.EnvironmentInfo

// Validation holds the outcome of validating one script on one target
// platform.
type Validation struct {
	// Script is the script that was validated.
	Script Script

	// Platform is the target platform the script was validated against.
	Platform Platform

	// Result holds the execution outcome. It is nil when the run was skipped.
	Result *ExecResult

	// Skipped indicates the script never ran on this platform, for example
	// because the platform is unreachable from the current host or does not
	// support the script's type.
	Skipped bool

	// SkipReason explains why the run was skipped.
	SkipReason string
}

// Passed reports whether the script ran and exited cleanly.
func (v *Validation) Passed() bool {
	return !v.Skipped && v.Result != nil && v.Result.Success()
}

// Summary tallies validation outcomes.
type Summary struct {
	// Passed counts validations whose script exited cleanly.
	Passed int

	// Failed counts validations whose script ran but did not exit cleanly.
	Failed int

	// Skipped counts validations that never ran.
	Skipped int
}

// Summarize aggregates a set of validations into a Summary.
func Summarize(validations []Validation) Summary {
	var s Summary
	for i := range validations {
		switch {
		case validations[i].Skipped:
			s.Skipped++
		case validations[i].Passed():
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}
