package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// scriptTimeout bounds every script execution. On expiry the whole process
// tree is killed and waited on, and the run is reported as a timeout result
// rather than a Go error. A variable only so tests can shorten it.
var scriptTimeout = 300 * time.Second

// spawnSpec describes one child process to run on behalf of an adapter.
type spawnSpec struct {
	// argv is the full command line; argv[0] is resolved via PATH.
	argv []string
	// dir is the working directory. Empty means inherit, which is the only
	// possibility when dispatching across the WSL boundary.
	dir string
	// env is the complete child environment. nil inherits the parent's.
	env []string
	// maxOutput limits captured stdout/stderr individually; 0 means no limit.
	maxOutput int
}

// runScript spawns the command described by spec, captures bounded output,
// enforces the fixed timeout, and encodes every operational failure into the
// returned ExecResult. It never returns an error: spawn failures, timeouts,
// cancellation, and non-zero exits all become result fields.
func runScript(ctx context.Context, logger *slog.Logger, spec spawnSpec) *ExecResult {
	runCtx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, spec.argv[0], spec.argv[1:]...)
	cmd.Dir = spec.dir
	cmd.Env = spec.env

	var stdout, stderr bytes.Buffer
	var stdoutWriter, stderrWriter io.Writer
	stdoutWriter = &stdout
	stderrWriter = &stderr
	if spec.maxOutput > 0 {
		stdoutWriter = &limitedWriter{buf: &stdout, limit: spec.maxOutput}
		stderrWriter = &limitedWriter{buf: &stderr, limit: spec.maxOutput}
	}
	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	tree := newProcTree()
	tree.setup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &ExecResult{
			ExitCode: -1,
			Stderr:   fmt.Sprintf("failed to start %s: %v", spec.argv[0], err),
			Duration: time.Since(start),
		}
	}
	if err := tree.started(cmd); err != nil {
		// Tree tracking failed; the script still runs, but grandchildren
		// may survive a timeout kill.
		logger.Warn("process tree tracking unavailable", "argv0", spec.argv[0], "error", err)
	}
	defer tree.close()

	err := cmd.Wait()
	duration := time.Since(start)
	peak := tree.peakMemory(cmd)

	// The caller's context is checked first: a cancellation or deadline it
	// imposed must not be reported as the fixed script timeout.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ExecResult{
			ExitCode:   -1,
			Stderr:     fmt.Sprintf("script execution canceled: %v", ctxErr),
			Duration:   duration,
			PeakMemory: peak,
		}
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &ExecResult{
			ExitCode:   -1,
			Stderr:     fmt.Sprintf("script timed out after %ds", int(scriptTimeout.Seconds())),
			Duration:   duration,
			PeakMemory: peak,
		}
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitStatus(exitErr)
		} else {
			return &ExecResult{
				ExitCode:   -1,
				Stderr:     fmt.Sprintf("script execution failed: %v", err),
				Duration:   duration,
				PeakMemory: peak,
			}
		}
	}

	truncated := false
	if spec.maxOutput > 0 {
		if stdout.Len() >= spec.maxOutput || stderr.Len() >= spec.maxOutput {
			truncated = true
		}
	}

	return &ExecResult{
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Duration:   duration,
		PeakMemory: peak,
		Truncated:  truncated,
	}
}

// limitedWriter wraps a bytes.Buffer and stops writing after limit bytes.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard but report success
	}
	if len(p) <= remaining {
		return w.buf.Write(p)
	}
	// Write only what fits, but report full length to avoid io.ErrShortWrite.
	_, err := w.buf.Write(p[:remaining])
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// normalizeNewlines converts CRLF and bare CR line endings to LF. Output
// that crossed the WSL boundary mixes conventions.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ensureExecutable best-effort sets the execute bit on a script. Scripts
// checked out on Windows filesystems usually arrive without it. A chmod
// failure never blocks execution.
func ensureExecutable(path string, logger *slog.Logger) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode()
	if mode&0o111 != 0 {
		return
	}
	if err := os.Chmod(path, mode.Perm()|0o755); err != nil {
		logger.Debug("could not set execute bit", "path", path, "error", err)
	}
}
