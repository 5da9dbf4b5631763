package platform

import (
	"context"
	"os"
	"path/filepath"

	"github.com/shipcheck/shipcheck/internal/envutil"
	"github.com/shipcheck/shipcheck/internal/wslpath"
)

// wslAdapter executes shell and python scripts inside WSL. Running inside a
// WSL guest it spawns directly; from a Windows host it dispatches through
// wsl.exe with path and environment translation.
type wslAdapter struct {
	cfg adapterConfig

	// hostSide is fixed at construction: true when the current process runs
	// outside WSL and must bridge through wsl.exe.
	hostSide bool

	// distro is the explicit target distro for bridged dispatch; empty
	// lets wsl.exe pick the default distro.
	distro string
}

func newWSLAdapter(cfg adapterConfig) *wslAdapter {
	a := &wslAdapter{cfg: cfg, hostSide: !isWSL()}
	a.distro = cfg.wslDistro
	if a.distro == "" {
		a.distro = os.Getenv("WSL_DISTRO_NAME")
	}
	if a.hostSide && a.distro == "" {
		cfg.logger.Debug("no WSL distro selected, bridged dispatch uses the default distro")
	}
	return a
}

func (a *wslAdapter) Platform() Platform { return WSL }

// Available reports true only inside a WSL guest. A Windows host with WSL
// installed still reports false; whether to bridge is the orchestrator's
// decision, made via HasWSL.
func (a *wslAdapter) Available() bool {
	return isWSL()
}

func (a *wslAdapter) supports(t ScriptType) bool {
	return Supports(WSL, t)
}

// HasWSL reports whether wsl.exe resolves on the current host, i.e. whether
// bridged dispatch from Windows into WSL is possible at all.
func HasWSL() bool {
	_, err := lookPath("wsl")
	return err == nil
}

// wslArgv returns the wsl.exe dispatch prefix for the selected distro.
func (a *wslAdapter) wslArgv() []string {
	argv := []string{"wsl"}
	if a.distro != "" {
		argv = append(argv, "-d", a.distro)
	}
	return argv
}

func (a *wslAdapter) ExecuteScript(ctx context.Context, script Script, args []string) (*ExecResult, error) {
	if !a.supports(script.Type) {
		return nil, &UnsupportedScriptTypeError{Platform: WSL, Type: script.Type}
	}

	spec := spawnSpec{maxOutput: a.cfg.maxOutput}
	if a.hostSide {
		spec.argv = a.hostArgv(ctx, script, args)
		// No cwd override is possible across the WSL boundary; wsl.exe
		// maps the host cwd itself.
		spec.env = a.hostEnv()
	} else {
		ensureExecutable(script.Path, a.cfg.logger)
		spec.argv = a.guestArgv(script, args)
		spec.dir = filepath.Dir(script.Path)
		spec.env = a.guestEnv()
	}

	res := runScript(ctx, a.cfg.logger, spec)
	res.Stdout = normalizeNewlines(res.Stdout)
	res.Stderr = normalizeNewlines(res.Stderr)
	return res, nil
}

// hostArgv builds the bridged command line: a wsl.exe dispatch prefix, the
// interpreter as seen inside the distro, and the script path translated to
// its /mnt mount point.
func (a *wslAdapter) hostArgv(ctx context.Context, script Script, args []string) []string {
	path := wslpath.ToWSL(script.Path)
	argv := a.wslArgv()
	switch script.Type {
	case Shell:
		argv = append(argv, "bash", path)
	case Python:
		argv = append(argv, a.guestPython(ctx), path)
	}
	return append(argv, args...)
}

// guestArgv builds the command line for direct execution inside the guest,
// identical in shape to native Linux dispatch.
func (a *wslAdapter) guestArgv(script Script, args []string) []string {
	var argv []string
	switch script.Type {
	case Shell:
		argv = []string{"bash", script.Path}
	case Python:
		argv = []string{resolvePython("python3"), script.Path}
	}
	return append(argv, args...)
}

// hostEnv is the environment for wsl.exe dispatch from a Windows host.
// WSLENV=PATH/l shares the host PATH across the boundary as a translated
// path list.
func (a *wslAdapter) hostEnv() []string {
	env := envutil.SetEnv(os.Environ(), "WSLENV", "PATH/l")
	return envutil.MergeEnv(env, a.cfg.extraEnv)
}

// guestEnv is the environment for direct execution inside the guest.
func (a *wslAdapter) guestEnv() []string {
	env := envutil.PrependPath(os.Environ(), linuxToolDirs...)
	env = envutil.SetDefaultEnv(env, "LANG", "C.UTF-8")
	env = envutil.SetDefaultEnv(env, "LC_ALL", "C.UTF-8")
	return envutil.MergeEnv(env, a.cfg.extraEnv)
}

// guestPython resolves the Python interpreter inside the target distro by
// probing the candidates through `wsl which`.
func (a *wslAdapter) guestPython(ctx context.Context) string {
	for _, candidate := range pythonCandidates {
		if _, err := probeCommand(ctx, append(a.wslArgv(), "which", candidate)); err == nil {
			return candidate
		}
	}
	return "python3"
}

func (a *wslAdapter) CheckDependencies(ctx context.Context, names []string) []DependencyCheck {
	checks := make([]DependencyCheck, 0, len(names))
	for _, name := range names {
		if a.hostSide {
			checks = append(checks, a.guestCheckDependency(ctx, name))
		} else {
			checks = append(checks, checkDependency(ctx, name))
		}
	}
	return checks
}

// guestCheckDependency resolves a tool inside the target distro and
// best-effort probes its version through wsl.exe.
func (a *wslAdapter) guestCheckDependency(ctx context.Context, name string) DependencyCheck {
	check := DependencyCheck{Name: name}

	if _, err := probeCommand(ctx, append(a.wslArgv(), "which", name)); err != nil {
		check.Message = "not found in WSL"
		return check
	}
	check.Available = true

	argv := append(a.wslArgv(), name)
	argv = append(argv, versionArgsFor(name)...)
	version, err := probeCommand(ctx, argv)
	if err != nil {
		check.Message = "version probe failed: " + err.Error()
		return check
	}
	check.Version = version
	return check
}

func (a *wslAdapter) EnvironmentInfo(ctx context.Context) *EnvironmentInfo {
	if a.hostSide {
		return a.hostEnvironmentInfo(ctx)
	}

	info := &EnvironmentInfo{
		Platform:          WSL,
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

// hostEnvironmentInfo describes the target distro as seen through wsl.exe.
func (a *wslAdapter) hostEnvironmentInfo(ctx context.Context) *EnvironmentInfo {
	info := &EnvironmentInfo{Platform: WSL}

	if out, err := commandOutput(ctx, append(a.wslArgv(), "cat", "/etc/os-release")); err == nil {
		info.OSVersion = releaseField(normalizeNewlines(out), "PRETTY_NAME")
	}
	if v, err := probeCommand(ctx, append(a.wslArgv(), "bash", "--version")); err == nil {
		info.ShellVersion = v
	}
	if v, err := probeCommand(ctx, append(a.wslArgv(), a.guestPython(ctx), "--version")); err == nil {
		info.RuntimeVersion = v
	}

	present := make([]string, 0, len(commandCatalog))
	for _, name := range commandCatalog {
		if _, err := probeCommand(ctx, append(a.wslArgv(), "which", name)); err == nil {
			present = append(present, name)
		}
	}
	info.AvailableCommands = present
	return info
}
