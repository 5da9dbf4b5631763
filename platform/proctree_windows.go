//go:build windows

package platform

import (
	"os"
	"os/exec"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// procTreeWaitDelay is the time to wait for a killed process tree to release
// its stdout/stderr pipes before giving up on reads.
const procTreeWaitDelay = 3 * time.Second

// procTree kills a script's whole process tree on timeout and samples its
// peak memory. On Windows the tree is a job object with kill-on-close set,
// so grandchildren cannot outlive a timeout kill.
type procTree struct {
	job windows.Handle
}

func newProcTree() *procTree { return &procTree{} }

// setup installs a Cancel hook that terminates the job when the associated
// context expires. In the window between Start and started, before the job
// exists, the hook falls back to killing the direct child only.
func (t *procTree) setup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= windows.CREATE_NEW_PROCESS_GROUP

	cmd.Cancel = func() error {
		if t.job != 0 {
			return windows.TerminateJobObject(t.job, 1)
		}
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = procTreeWaitDelay
}

// started creates a kill-on-close job object and assigns the child to it.
// Processes the script spawns inherit job membership, so a later terminate
// or handle close reaps the whole tree.
func (t *procTree) started(cmd *exec.Cmd) error {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return err
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		windows.CloseHandle(job)
		return err
	}

	proc, err := windows.OpenProcess(
		windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE,
		false,
		uint32(cmd.Process.Pid),
	)
	if err != nil {
		windows.CloseHandle(job)
		return err
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		windows.CloseHandle(job)
		return err
	}
	t.job = job
	return nil
}

// peakMemory returns the job's peak committed memory in bytes.
func (t *procTree) peakMemory(*exec.Cmd) int64 {
	if t.job == 0 {
		return 0
	}
	var info windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION
	var retLen uint32
	err := windows.QueryInformationJobObject(
		t.job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
		&retLen,
	)
	if err != nil {
		return 0
	}
	return int64(info.PeakJobMemoryUsed)
}

// close releases the job handle. Kill-on-close reaps anything the script
// left running after it exited.
func (t *procTree) close() {
	if t.job != 0 {
		windows.CloseHandle(t.job)
		t.job = 0
	}
}

// exitStatus extracts the exit code from an exited child. Windows has no
// signal-death convention; the reported code is used as-is.
func exitStatus(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
