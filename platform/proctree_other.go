//go:build !darwin && !linux && !windows

package platform

import "os/exec"

// procTree is a stub for operating systems without process-tree kill or
// memory accounting support. Timeout kill falls back to exec.Cmd's default
// Cancel, which terminates the direct child only.
type procTree struct{}

func newProcTree() *procTree { return &procTree{} }

func (t *procTree) setup(*exec.Cmd) {}

func (t *procTree) started(*exec.Cmd) error { return nil }

func (t *procTree) peakMemory(*exec.Cmd) int64 { return 0 }

func (t *procTree) close() {}

// exitStatus extracts the exit code from an exited child.
func exitStatus(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
