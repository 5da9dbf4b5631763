package platform

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shipcheck/shipcheck/internal/envutil"
)

// windowsAdapter executes batch, PowerShell, and python scripts on a native
// Windows host.
type windowsAdapter struct {
	cfg adapterConfig
}

func (a *windowsAdapter) Platform() Platform { return Windows }

func (a *windowsAdapter) Available() bool {
	return runtime.GOOS == "windows"
}

func (a *windowsAdapter) supports(t ScriptType) bool {
	return Supports(Windows, t)
}

func (a *windowsAdapter) ExecuteScript(ctx context.Context, script Script, args []string) (*ExecResult, error) {
	if !a.supports(script.Type) {
		return nil, &UnsupportedScriptTypeError{Platform: Windows, Type: script.Type}
	}

	return runScript(ctx, a.cfg.logger, spawnSpec{
		argv:      a.buildArgv(script, args),
		dir:       filepath.Dir(script.Path),
		env:       a.childEnv(),
		maxOutput: a.cfg.maxOutput,
	}), nil
}

func (a *windowsAdapter) buildArgv(script Script, args []string) []string {
	var argv []string
	switch script.Type {
	case Batch:
		argv = []string{script.Path}
	case PowerShell:
		argv = []string{"powershell.exe", "-ExecutionPolicy", "Bypass", "-File", script.Path}
	case Python:
		argv = []string{resolvePython("python"), script.Path}
	}
	return append(argv, args...)
}

// childEnv builds the script environment with System32 and the PowerShell
// directory guaranteed on PATH and configured overrides applied last.
func (a *windowsAdapter) childEnv() []string {
	env := envutil.PrependPath(os.Environ(), windowsToolDirs()...)
	return envutil.MergeEnv(env, a.cfg.extraEnv)
}

// windowsToolDirs returns the conventional Windows tool directories.
func windowsToolDirs() []string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return []string{
		filepath.Join(root, "System32"),
		filepath.Join(root, "System32", "WindowsPowerShell", "v1.0"),
	}
}

func (a *windowsAdapter) CheckDependencies(ctx context.Context, names []string) []DependencyCheck {
	checks := make([]DependencyCheck, 0, len(names))
	for _, name := range names {
		checks = append(checks, checkDependency(ctx, name))
	}
	return checks
}

func (a *windowsAdapter) EnvironmentInfo(ctx context.Context) *EnvironmentInfo {
	info := &EnvironmentInfo{
		Platform:          Windows,
		OSVersion:         windowsOSVersion(),
		AvailableCommands: availableCommands(),
	}
	if v, err := probeCommand(ctx, []string{
		"powershell.exe", "-NoProfile", "-Command", "$PSVersionTable.PSVersion.ToString()",
	}); err == nil {
		info.ShellVersion = v
	}
	if v, err := probeCommand(ctx, []string{resolvePython("python"), "--version"}); err == nil {
		info.RuntimeVersion = v
	}
	return info
}
