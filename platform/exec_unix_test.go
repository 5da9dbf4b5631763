//go:build darwin || linux

package platform

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// shellSpec builds a spawnSpec that runs a shell snippet via /bin/sh.
func shellSpec(snippet string) spawnSpec {
	return spawnSpec{argv: []string{"/bin/sh", "-c", snippet}}
}

// processAlive probes a textual pid with signal 0.
func processAlive(t *testing.T, pid string) bool {
	t.Helper()
	n, err := strconv.Atoi(pid)
	if err != nil {
		t.Fatalf("bad pid %q: %v", pid, err)
	}
	return syscall.Kill(n, 0) == nil
}

// TestRunScriptCapturesStdout verifies that runScript captures stdout and
// reports a zero exit code for a successful command.
func TestRunScriptCapturesStdout(t *testing.T) {
	res := runScript(context.Background(), testLogger(), shellSpec("echo hello"))

	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0 (stderr: %q)", res.ExitCode, res.Stderr)
	}
	if got := strings.TrimSpace(res.Stdout); got != "hello" {
		t.Errorf("Stdout = %q, want %q", got, "hello")
	}
	if !res.Success() {
		t.Error("Success() = false, want true")
	}
	if res.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", res.Duration)
	}
}

// TestRunScriptNonZeroExit verifies that a non-zero exit is reported in the
// result and never as a Go error.
func TestRunScriptNonZeroExit(t *testing.T) {
	res := runScript(context.Background(), testLogger(), shellSpec("exit 42"))

	if res.ExitCode != 42 {
		t.Errorf("ExitCode = %d, want 42", res.ExitCode)
	}
	if res.Success() {
		t.Error("Success() = true, want false")
	}
}

// TestRunScriptCapturesStderr verifies stdout and stderr are captured
// separately.
func TestRunScriptCapturesStderr(t *testing.T) {
	res := runScript(context.Background(), testLogger(), shellSpec("echo out; echo oops >&2"))

	if got := strings.TrimSpace(res.Stdout); got != "out" {
		t.Errorf("Stdout = %q, want %q", got, "out")
	}
	if got := strings.TrimSpace(res.Stderr); got != "oops" {
		t.Errorf("Stderr = %q, want %q", got, "oops")
	}
}

// TestRunScriptSpawnFailure verifies that an unstartable command becomes an
// ExitCode -1 result with a diagnostic on stderr.
func TestRunScriptSpawnFailure(t *testing.T) {
	spec := spawnSpec{argv: []string{"/nonexistent/shipcheck-no-such-binary"}}
	res := runScript(context.Background(), testLogger(), spec)

	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "failed to start") {
		t.Errorf("Stderr = %q, want a failed-to-start diagnostic", res.Stderr)
	}
}

// TestRunScriptTimeout verifies the fixed timeout kills the script and
// produces the documented timeout result: exit code -1, empty stdout, and a
// timeout message on stderr.
func TestRunScriptTimeout(t *testing.T) {
	old := scriptTimeout
	scriptTimeout = 500 * time.Millisecond
	defer func() { scriptTimeout = old }()

	start := time.Now()
	res := runScript(context.Background(), testLogger(), shellSpec("echo started; sleep 30"))
	elapsed := time.Since(start)

	if elapsed > 10*time.Second {
		t.Fatalf("runScript returned after %v, want well under the sleep duration", elapsed)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "timed out") {
		t.Errorf("Stderr = %q, want a timeout message", res.Stderr)
	}
	if res.Stdout != "" {
		t.Errorf("Stdout = %q, want empty on timeout", res.Stdout)
	}
}

// TestRunScriptTimeoutKillsProcessTree verifies that a timeout kills
// grandchildren, not just the direct child. The script backgrounds a long
// sleep and records its pid; after the timeout that pid must be gone.
func TestRunScriptTimeoutKillsProcessTree(t *testing.T) {
	old := scriptTimeout
	scriptTimeout = 500 * time.Millisecond
	defer func() { scriptTimeout = old }()

	pidFile := filepath.Join(t.TempDir(), "grandchild.pid")
	snippet := "sleep 30 & echo $! > " + pidFile + "; wait"
	res := runScript(context.Background(), testLogger(), shellSpec(snippet))

	if res.ExitCode != -1 {
		t.Fatalf("ExitCode = %d, want -1 (stderr: %q)", res.ExitCode, res.Stderr)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("reading grandchild pid: %v", err)
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		t.Fatal("grandchild pid file is empty")
	}

	// Signal 0 probes existence. Poll briefly: the group kill is issued
	// before runScript returns but reaping is asynchronous.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if !processAlive(t, pid) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("grandchild pid %s still alive after timeout kill", pid)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// TestRunScriptCanceled verifies that caller cancellation is reported as a
// canceled result, distinct from the fixed timeout.
func TestRunScriptCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res := runScript(ctx, testLogger(), shellSpec("sleep 30"))

	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "canceled") {
		t.Errorf("Stderr = %q, want a cancellation message", res.Stderr)
	}
	if strings.Contains(res.Stderr, "timed out") {
		t.Errorf("Stderr = %q, cancellation reported as a timeout", res.Stderr)
	}
}

// TestRunScriptSignaledExit verifies the shell convention for signaled
// children: 128 plus the signal number.
func TestRunScriptSignaledExit(t *testing.T) {
	res := runScript(context.Background(), testLogger(), shellSpec("kill -9 $$"))

	if res.ExitCode != 137 {
		t.Errorf("ExitCode = %d, want 137 (128+SIGKILL)", res.ExitCode)
	}
}

// TestRunScriptTruncatesOutput verifies the per-stream output cap and the
// Truncated flag.
func TestRunScriptTruncatesOutput(t *testing.T) {
	spec := shellSpec("printf 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'") // 32 bytes
	spec.maxOutput = 16
	res := runScript(context.Background(), testLogger(), spec)

	if len(res.Stdout) != 16 {
		t.Errorf("len(Stdout) = %d, want 16", len(res.Stdout))
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}

	// Under the cap nothing is flagged.
	spec = shellSpec("echo short")
	spec.maxOutput = 1024
	res = runScript(context.Background(), testLogger(), spec)
	if res.Truncated {
		t.Error("Truncated = true for output under the cap")
	}
}

// TestRunScriptWorkdir verifies the child runs in the requested directory.
func TestRunScriptWorkdir(t *testing.T) {
	dir := t.TempDir()
	spec := shellSpec("pwd")
	spec.dir = dir
	res := runScript(context.Background(), testLogger(), spec)

	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks(%q): %v", dir, err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	if err != nil {
		t.Fatalf("EvalSymlinks(%q): %v", res.Stdout, err)
	}
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

// TestRunScriptEnv verifies the child sees exactly the provided environment.
func TestRunScriptEnv(t *testing.T) {
	spec := shellSpec("echo $SHIPCHECK_PROBE")
	spec.env = append(os.Environ(), "SHIPCHECK_PROBE=ok")
	res := runScript(context.Background(), testLogger(), spec)

	if got := strings.TrimSpace(res.Stdout); got != "ok" {
		t.Errorf("Stdout = %q, want %q", got, "ok")
	}
}

// TestRunScriptPeakMemory verifies that a completed child reports a non-zero
// peak resident set size.
func TestRunScriptPeakMemory(t *testing.T) {
	res := runScript(context.Background(), testLogger(), shellSpec("echo hi"))

	if res.PeakMemory <= 0 {
		t.Errorf("PeakMemory = %d, want > 0", res.PeakMemory)
	}
}
