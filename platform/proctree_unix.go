//go:build darwin || linux

package platform

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"
)

// procTreeWaitDelay is the time to wait for a killed process tree to release
// its stdout/stderr pipes before giving up on reads.
const procTreeWaitDelay = 3 * time.Second

// procTree kills a script's whole process tree on timeout and samples its
// peak memory. On unix the tree is a session created via Setsid.
type procTree struct{}

func newProcTree() *procTree { return &procTree{} }

// setup configures cmd to run in its own session (via Setsid) and installs a
// Cancel hook that kills the entire process group when the associated
// context expires. Setsid (rather than Setpgid) gives the child its own
// session, which also prevents orphaned grandchildren from holding
// stdout/stderr pipes open after a timeout kill.
func (t *procTree) setup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setpgid = false
	cmd.SysProcAttr.Pgid = 0

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		pid := cmd.Process.Pid
		// Guard: kill(-1) kills ALL user processes; kill(0) kills the
		// caller's process group. Both are catastrophic and must never
		// happen. Treat invalid PIDs as "already done" rather than risking
		// a mass kill.
		if pid <= 1 {
			return os.ErrProcessDone
		}
		if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
			// ESRCH means the process (group) no longer exists.
			if errors.Is(err, syscall.ESRCH) {
				return os.ErrProcessDone
			}
			return err
		}
		return nil
	}
	cmd.WaitDelay = procTreeWaitDelay
}

// started is a no-op on unix; the session exists from the moment of fork.
func (t *procTree) started(*exec.Cmd) error { return nil }

// peakMemory returns the child's maximum resident set size in bytes, read
// from the rusage the kernel attached to its exit status.
func (t *procTree) peakMemory(cmd *exec.Cmd) int64 {
	if cmd.ProcessState == nil {
		return 0
	}
	ru, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	// Maxrss is KiB on Linux and bytes on macOS.
	if runtime.GOOS == "darwin" {
		return int64(ru.Maxrss)
	}
	return int64(ru.Maxrss) * 1024
}

func (t *procTree) close() {}

// exitStatus extracts the shell-convention exit code from an exited child:
// the real code for a normal exit, 128+signal for a signaled death.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
