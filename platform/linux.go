package platform

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shipcheck/shipcheck/internal/envutil"
)

// linuxToolDirs are the conventional tool directories prepended to the
// child PATH on Linux and inside WSL guests.
var linuxToolDirs = []string{"/usr/local/bin", "/usr/bin", "/bin"}

// linuxAdapter executes shell and python scripts on a native Linux host.
type linuxAdapter struct {
	cfg adapterConfig
}

func (a *linuxAdapter) Platform() Platform { return Linux }

// Available reports true only on genuine, non-WSL Linux.
func (a *linuxAdapter) Available() bool {
	return runtime.GOOS == "linux" && !isWSL()
}

func (a *linuxAdapter) supports(t ScriptType) bool {
	return Supports(Linux, t)
}

func (a *linuxAdapter) ExecuteScript(ctx context.Context, script Script, args []string) (*ExecResult, error) {
	if !a.supports(script.Type) {
		return nil, &UnsupportedScriptTypeError{Platform: Linux, Type: script.Type}
	}

	ensureExecutable(script.Path, a.cfg.logger)

	return runScript(ctx, a.cfg.logger, spawnSpec{
		argv:      a.buildArgv(script, args),
		dir:       filepath.Dir(script.Path),
		env:       a.childEnv(),
		maxOutput: a.cfg.maxOutput,
	}), nil
}

func (a *linuxAdapter) buildArgv(script Script, args []string) []string {
	var argv []string
	switch script.Type {
	case Shell:
		argv = []string{"bash", script.Path}
	case Python:
		argv = []string{resolvePython("python3"), script.Path}
	}
	return append(argv, args...)
}

// childEnv builds the script environment: the parent env with conventional
// tool dirs prepended to PATH, the locale defaulted, and configured
// overrides applied last.
func (a *linuxAdapter) childEnv() []string {
	env := envutil.PrependPath(os.Environ(), linuxToolDirs...)
	env = envutil.SetDefaultEnv(env, "LANG", "C.UTF-8")
	env = envutil.SetDefaultEnv(env, "LC_ALL", "C.UTF-8")
	return envutil.MergeEnv(env, a.cfg.extraEnv)
}

func (a *linuxAdapter) CheckDependencies(ctx context.Context, names []string) []DependencyCheck {
	checks := make([]DependencyCheck, 0, len(names))
	for _, name := range names {
		checks = append(checks, checkDependency(ctx, name))
	}
	return checks
}

func (a *linuxAdapter) EnvironmentInfo(ctx context.Context) *EnvironmentInfo {
	info := &EnvironmentInfo{
		Platform:          Linux,
		OSVersion:         unixOSVersion(ctx),
		AvailableCommands: availableCommands(),
	}
	if v, err := probeCommand(ctx, []string{"bash", "--version"}); err == nil {
		info.ShellVersion = v
	}
	if v, err := probeCommand(ctx, []string{resolvePython("python3"), "--version"}); err == nil {
		info.RuntimeVersion = v
	}
	return info
}
