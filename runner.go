package shipcheck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shipcheck/shipcheck/platform"
	"github.com/shipcheck/shipcheck/resource"
)

const (
	// defaultMaxOutputBytes is the default limit for captured stdout/stderr (10 MB).
	defaultMaxOutputBytes = 10 * 1024 * 1024

	// defaultStaleAgeMinutes is the default age after which orphaned
	// temporary files are reclaimed.
	defaultStaleAgeMinutes = 60

	// stateOverheadBytes is the disk headroom required for a run beyond its
	// hex-encoded backup snapshots.
	stateOverheadBytes = 1 << 20
)

// Runner validates delivery scripts against a set of target platforms.
// A Runner is safe for concurrent use by multiple goroutines.
type Runner struct {
	mu     sync.Mutex
	closed bool

	cfg       Config
	logger    *slog.Logger
	platforms *platform.Manager
	resources *resource.Manager
}

// NewRunner creates a Runner from cfg. The configuration is validated before
// the runner is created; a nil cfg uses DefaultConfig.
func NewRunner(cfg *Config) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Work on a copy so the runner never observes later caller mutations.
	cfgCopy := deepCopyConfig(cfg)

	logger := cfgCopy.Logger
	if logger == nil {
		logger = slog.Default()
	}

	popts := []platform.Option{platform.WithLogger(logger)}
	if cfgCopy.MaxOutputBytes > 0 {
		popts = append(popts, platform.WithMaxOutput(cfgCopy.MaxOutputBytes))
	}
	if len(cfgCopy.Env) > 0 {
		popts = append(popts, platform.WithExtraEnv(cfgCopy.Env...))
	}
	if cfgCopy.WSLDistro != "" {
		popts = append(popts, platform.WithWSLDistro(cfgCopy.WSLDistro))
	}

	ropts := []resource.Option{resource.WithLogger(logger)}
	if cfgCopy.TempDir != "" {
		ropts = append(ropts, resource.WithBaseDir(cfgCopy.TempDir))
	}
	if cfgCopy.StateDir != "" {
		ropts = append(ropts, resource.WithStateDir(cfgCopy.StateDir))
	}
	if cfgCopy.StaleAgeMinutes > 0 {
		ropts = append(ropts, resource.WithStaleAge(time.Duration(cfgCopy.StaleAgeMinutes)*time.Minute))
	}

	resources, err := resource.NewManager(ropts...)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:       cfgCopy,
		logger:    logger,
		platforms: platform.NewManager(popts...),
		resources: resources,
	}, nil
}

// ValidateScript runs script on every configured target platform and returns
// one Validation per platform. Targets that cannot execute here or do not
// support the script's type are reported as skipped. Script failures are
// reported in the returned validations, never as panics or dropped runs, and
// any damage a failed run did to declared backup files is rolled back before
// its Validation is returned.
func (r *Runner) ValidateScript(ctx context.Context, script Script, opts ...RunOption) []Validation {
	ro := mergeRunOptions(opts...)

	targets := ro.platforms
	if len(targets) == 0 {
		targets = r.cfg.Platforms
	}

	validations := make([]Validation, 0, len(targets))
	for _, p := range targets {
		validations = append(validations, r.validateOn(ctx, p, script, ro))
	}
	return validations
}

// ValidateAll discovers every script under root and validates each one
// against the configured target platforms. Validation stops early when ctx
// is canceled, returning the results collected so far with the context's
// error.
func (r *Runner) ValidateAll(ctx context.Context, root string, opts ...RunOption) ([]Validation, error) {
	scripts, err := DiscoverScripts(root)
	if err != nil {
		return nil, err
	}

	var validations []Validation
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return validations, err
		}
		validations = append(validations, r.ValidateScript(ctx, script, opts...)...)
	}
	return validations, nil
}

// validateOn runs one script on one target platform and folds every possible
// outcome into a Validation.
func (r *Runner) validateOn(ctx context.Context, p platform.Platform, script Script, ro *runOptions) Validation {
	v := Validation{Script: script, Platform: p}

	if r.isClosed() {
		v.Skipped = true
		v.SkipReason = ErrRunnerClosed.Error()
		return v
	}

	adapter, err := r.platforms.Adapter(p)
	if err != nil {
		v.Skipped = true
		v.SkipReason = err.Error()
		return v
	}

	if !platform.Supports(p, script.Type) {
		v.Skipped = true
		v.SkipReason = fmt.Sprintf("%s scripts are not supported on %s", script.Type, p)
		return v
	}

	if !r.canRunOn(p, adapter) {
		v.Skipped = true
		v.SkipReason = fmt.Sprintf("platform %s is not reachable from this host", p)
		return v
	}

	if err := r.resources.EnsureDiskSpace(r.requiredBytes(ro)); err != nil {
		v.Skipped = true
		v.SkipReason = err.Error()
		return v
	}

	r.logger.Info("validating script",
		"script", script.Path, "type", script.Type, "platform", p)

	md := make(map[string]string, len(ro.metadata)+1)
	for k, val := range ro.metadata {
		md[k] = val
	}
	md["platform"] = string(p)

	var result *platform.ExecResult
	runErr := r.resources.ExecutionContext(ctx, script.Path, ro.backupFiles, md, func(ctx context.Context) error {
		res, execErr := adapter.ExecuteScript(ctx, script, ro.args)
		if execErr != nil {
			return execErr
		}
		result = res
		if !res.Success() {
			return fmt.Errorf("script exited with code %d", res.ExitCode)
		}
		return nil
	})

	v.Result = result
	if result == nil && runErr != nil {
		// The script never ran: saving the pre-run state failed, or the
		// adapter rejected the script outright.
		v.Skipped = true
		v.SkipReason = runErr.Error()
		return v
	}

	r.logger.Info("validation finished",
		"script", script.Path, "platform", p,
		"exit_code", result.ExitCode, "duration", result.Duration,
		"peak_memory", result.PeakMemory)
	return v
}

// canRunOn reports whether the target platform can execute scripts from the
// current host. WSL targets are reachable from a Windows host through
// wsl.exe even though the host itself is not WSL.
func (r *Runner) canRunOn(p platform.Platform, a platform.Adapter) bool {
	if a.Available() {
		return true
	}
	return p == platform.WSL && r.platforms.Current() == platform.Windows && platform.HasWSL()
}

// requiredBytes estimates the disk space a run needs: the execution state
// record stores backup snapshots hex-encoded, costing twice their size, plus
// a fixed overhead for the record itself and small script outputs.
func (r *Runner) requiredBytes(ro *runOptions) uint64 {
	var need uint64 = stateOverheadBytes
	for _, p := range ro.backupFiles {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			need += 2 * uint64(fi.Size())
		}
	}
	return need
}

// Current returns the platform shipcheck is running on.
func (r *Runner) Current() Platform {
	return r.platforms.Current()
}

// Available reports whether p is the environment the current process
// actually runs in.
func (r *Runner) Available(p Platform) bool {
	return r.platforms.Available(p)
}

// Reachable reports whether scripts can be executed on p from the current
// host, including the Windows-to-WSL bridge.
func (r *Runner) Reachable(p Platform) bool {
	adapter, err := r.platforms.Adapter(p)
	if err != nil {
		return false
	}
	return r.canRunOn(p, adapter)
}

// EnvironmentInfo describes the execution environment of target platform p.
func (r *Runner) EnvironmentInfo(ctx context.Context, p Platform) (*EnvironmentInfo, error) {
	adapter, err := r.platforms.Adapter(p)
	if err != nil {
		return nil, err
	}
	return adapter.EnvironmentInfo(ctx), nil
}

// CheckDependencies probes the named tools on target platform p.
func (r *Runner) CheckDependencies(ctx context.Context, p Platform, names []string) ([]DependencyCheck, error) {
	adapter, err := r.platforms.Adapter(p)
	if err != nil {
		return nil, err
	}
	return adapter.CheckDependencies(ctx, names), nil
}

// PersistedStates lists execution state records found on disk, oldest first.
// Records written by runs that were interrupted or crashed remain listed
// until restored or discarded.
func (r *Runner) PersistedStates() ([]*resource.ExecutionState, error) {
	return r.resources.PersistedStates()
}

// RestoreState re-applies the rollback data of a saved execution state:
// files the run created are deleted and declared backup files are restored.
// It reports whether every restore step succeeded.
func (r *Runner) RestoreState(id string) bool {
	return r.resources.RestoreExecutionState(id)
}

// DiscardState drops a saved execution state and its on-disk record.
func (r *Runner) DiscardState(id string) {
	r.resources.DiscardExecutionState(id)
}

// SweepOlderThan removes temporary files under the workspace root older
// than age and returns how many entries were removed.
func (r *Runner) SweepOlderThan(age time.Duration) (int, error) {
	return r.resources.SweepOlderThan(age)
}

// SweepStale removes temporary files older than the configured stale age.
func (r *Runner) SweepStale() (int, error) {
	return r.SweepOlderThan(r.staleAge())
}

// Interrupted reports whether the runner's signal handler fired.
func (r *Runner) Interrupted() bool {
	return r.resources.Interrupted()
}

// Close releases the runner's resources, cleaning up registered temporary
// files. Close is idempotent; validations after Close are skipped.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	return r.resources.Close()
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Runner) staleAge() time.Duration {
	minutes := r.cfg.StaleAgeMinutes
	if minutes <= 0 {
		minutes = defaultStaleAgeMinutes
	}
	return time.Duration(minutes) * time.Minute
}
