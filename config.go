package shipcheck

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shipcheck/shipcheck/platform"
)

// Config holds the complete configuration for a Runner.
type Config struct {
	// Platforms lists the target platforms scripts are validated against.
	// Targets that cannot execute on the current host are skipped per run,
	// not rejected here.
	Platforms []platform.Platform `yaml:"platforms,omitempty"`

	// TempDir is the root directory for temporary files created during
	// validation runs. If empty, a shipcheck directory under os.TempDir()
	// is used.
	TempDir string `yaml:"temp_dir,omitempty"`

	// StateDir is the directory where execution state records are persisted
	// for crash recovery. If empty, a state directory under TempDir is used.
	StateDir string `yaml:"state_dir,omitempty"`

	// MaxOutputBytes limits the size of captured stdout/stderr per stream.
	// Defaults to defaultMaxOutputBytes (10 MB) when created via
	// DefaultConfig().
	MaxOutputBytes int `yaml:"max_output_bytes,omitempty"`

	// StaleAgeMinutes is the age in minutes after which orphaned temporary
	// files left behind by earlier runs are considered stale and reclaimed.
	// 0 means use the default (60 minutes).
	StaleAgeMinutes int `yaml:"stale_age_minutes,omitempty"`

	// Env lists additional KEY=VALUE environment entries passed to every
	// script execution.
	Env []string `yaml:"env,omitempty"`

	// WSLDistro pins the WSL distribution used when dispatching scripts
	// from a Windows host. If empty, wsl.exe picks its default distribution.
	WSLDistro string `yaml:"wsl_distro,omitempty"`

	// Logger is the structured logger for operational messages such as
	// skipped platforms, rollback results, and cleanup diagnostics.
	// If nil, slog.Default() is used.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config that validates against every supported
// platform with sensible limits.
func DefaultConfig() *Config {
	return &Config{
		Platforms:       platform.Platforms(),
		MaxOutputBytes:  defaultMaxOutputBytes,
		StaleAgeMinutes: defaultStaleAgeMinutes,
	}
}

// HostConfig returns a Config that targets only the platform shipcheck is
// currently running on. Useful for quick local iteration where cross-platform
// coverage is not the point.
func HostConfig() *Config {
	cfg := DefaultConfig()
	cfg.Platforms = []platform.Platform{platform.Detect()}
	return cfg
}

// CIConfig returns a Config suited to CI jobs. It targets Linux only and
// reclaims leftover workspaces from earlier jobs more aggressively.
func CIConfig() *Config {
	cfg := DefaultConfig()
	cfg.Platforms = []platform.Platform{platform.Linux}
	cfg.StaleAgeMinutes = 15
	return cfg
}

// LoadConfig reads a YAML configuration file and applies it on top of
// DefaultConfig. Environment variables in the file are expanded before
// parsing, so values like ${HOME}/scratch work as expected. The result is
// validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shipcheck: read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to a YAML file readable by LoadConfig.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("shipcheck: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("shipcheck: write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors and returns a descriptive
// error if any field is invalid. The returned error wraps ErrConfigInvalid.
func (c *Config) Validate() error {
	var errs []string

	errs = c.validatePlatforms(errs)
	errs = c.validateDirs(errs)

	if c.MaxOutputBytes < 0 {
		errs = append(errs, "MaxOutputBytes: must be >= 0")
	}
	if c.StaleAgeMinutes < 0 {
		errs = append(errs, "StaleAgeMinutes: must be >= 0")
	}

	for i, e := range c.Env {
		key, _, found := strings.Cut(e, "=")
		if !found || key == "" {
			errs = append(errs, fmt.Sprintf("Env[%d]: %q is not in KEY=VALUE form", i, e))
		}
	}

	if strings.ContainsAny(c.WSLDistro, " \t\n") {
		errs = append(errs, fmt.Sprintf("WSLDistro: %q must not contain whitespace", c.WSLDistro))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(errs, "; "))
	}

	return nil
}

// validatePlatforms checks the target platform list and appends any
// validation errors to errs.
func (c *Config) validatePlatforms(errs []string) []string {
	if len(c.Platforms) == 0 {
		errs = append(errs, "Platforms: must list at least one target platform")
		return errs
	}

	seen := make(map[platform.Platform]bool, len(c.Platforms))
	for i, p := range c.Platforms {
		if _, err := platform.ParsePlatform(string(p)); err != nil {
			errs = append(errs, fmt.Sprintf("Platforms[%d]: unknown platform %q", i, string(p)))
			continue
		}
		if seen[p] {
			errs = append(errs, fmt.Sprintf("Platforms[%d]: duplicate platform %q", i, string(p)))
		}
		seen[p] = true
	}

	return errs
}

// validateDirs checks the workspace directory fields and appends any
// validation errors to errs.
func (c *Config) validateDirs(errs []string) []string {
	dirs := []struct {
		name  string
		value string
	}{
		{"TempDir", c.TempDir},
		{"StateDir", c.StateDir},
	}

	for _, d := range dirs {
		if d.value == "" {
			continue
		}
		if strings.ContainsRune(d.value, 0) {
			errs = append(errs, fmt.Sprintf("%s: must not contain null bytes", d.name))
			continue
		}
		if !filepath.IsAbs(d.value) {
			if _, err := filepath.Abs(d.value); err != nil {
				errs = append(errs, fmt.Sprintf("%s: cannot resolve to absolute path: %v", d.name, err))
			}
		}
	}

	// The sweep exempts the state directory by path, so the two must stay
	// distinct or crash-recovery records would be reclaimed as stale files.
	if c.TempDir != "" && c.TempDir == c.StateDir {
		errs = append(errs, "StateDir: must not equal TempDir")
	}

	return errs
}

// deepCopyConfig returns a copy of cfg with all slice fields deep-copied to
// prevent aliasing. Logger is shared by reference intentionally.
func deepCopyConfig(cfg *Config) Config {
	cfgCopy := *cfg
	cfgCopy.Platforms = append([]platform.Platform{}, cfg.Platforms...)
	cfgCopy.Env = append([]string{}, cfg.Env...)
	return cfgCopy
}
