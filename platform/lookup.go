package platform

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// versionProbeTimeout bounds each best-effort probe so a wedged tool cannot
// stall a dependency check or environment report.
const versionProbeTimeout = 5 * time.Second

// lookPath resolves a command on the current host's PATH.
// Overridable in tests.
var lookPath = exec.LookPath

// pythonCandidates is the probe order for a usable Python interpreter.
var pythonCandidates = []string{"python3", "python", "py"}

// commandCatalog is the fixed set of commonly needed tools that
// EnvironmentInfo reports on. Presence is checked per call.
var commandCatalog = []string{
	"bash", "sh", "python3", "python", "git", "curl", "wget",
	"tar", "unzip", "docker", "node", "npm", "make",
}

// versionArgs maps known tools to the arguments that print their version.
// Tools not listed fall back to a plain --version probe.
var versionArgs = map[string][]string{
	"git":     {"--version"},
	"python":  {"--version"},
	"python3": {"--version"},
	"py":      {"--version"},
	"bash":    {"--version"},
	"node":    {"--version"},
	"npm":     {"--version"},
	"docker":  {"--version"},
	"go":      {"version"},
	"java":    {"-version"},
}

// versionArgsFor returns the version-probe arguments for a tool.
func versionArgsFor(name string) []string {
	if args, ok := versionArgs[name]; ok {
		return args
	}
	return []string{"--version"}
}

// resolvePython probes the interpreter candidates on the host PATH in order
// and returns the resolved path of the first hit, or fallback when none
// resolve.
func resolvePython(fallback string) string {
	for _, candidate := range pythonCandidates {
		if path, err := lookPath(candidate); err == nil {
			return path
		}
	}
	return fallback
}

// commandOutput runs argv under the probe timeout and returns its combined
// output. Stderr is included because several tools (notably java) print
// their version there. An error is reported only when the command also
// produced no output at all.
func commandOutput(ctx context.Context, argv []string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil && len(bytes.TrimSpace(out)) == 0 {
		return "", err
	}
	return string(out), nil
}

// probeCommand runs argv and returns the first non-empty line of its output.
func probeCommand(ctx context.Context, argv []string) (string, error) {
	out, err := commandOutput(ctx, argv)
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

// checkDependency resolves one tool on the host PATH and best-effort probes
// its version. All failure modes are recorded in the check, never returned.
func checkDependency(ctx context.Context, name string) DependencyCheck {
	check := DependencyCheck{Name: name}

	path, err := lookPath(name)
	if err != nil {
		check.Message = "not found on PATH"
		return check
	}
	check.Available = true

	version, err := probeCommand(ctx, append([]string{path}, versionArgsFor(name)...))
	if err != nil {
		check.Message = "version probe failed: " + err.Error()
		return check
	}
	check.Version = version
	return check
}

// availableCommands filters the command catalog by presence on the host PATH.
func availableCommands() []string {
	present := make([]string, 0, len(commandCatalog))
	for _, name := range commandCatalog {
		if _, err := lookPath(name); err == nil {
			present = append(present, name)
		}
	}
	return present
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
