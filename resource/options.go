package resource

import (
	"log/slog"
	"time"
)

// managerConfig collects construction-time settings for a Manager.
type managerConfig struct {
	logger     *slog.Logger
	baseDir    string
	stateDir   string
	staleAge   time.Duration
	skipSignal bool
}

// Option configures a Manager at construction.
type Option func(*managerConfig)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseDir overrides the root under which temp resources are allocated.
// The default is a shipcheck-owned directory under os.TempDir().
func WithBaseDir(dir string) Option {
	return func(c *managerConfig) {
		if dir != "" {
			c.baseDir = dir
		}
	}
}

// WithStateDir overrides where execution-state records are persisted.
// The default is a "state" directory under the base root.
func WithStateDir(dir string) Option {
	return func(c *managerConfig) {
		if dir != "" {
			c.stateDir = dir
		}
	}
}

// WithStaleAge sets the age past which on-disk temp resources are considered
// abandoned by EnsureDiskSpace's emergency sweep. The default is one hour.
func WithStaleAge(age time.Duration) Option {
	return func(c *managerConfig) {
		if age > 0 {
			c.staleAge = age
		}
	}
}

// WithoutSignalHandling disables the SIGINT/SIGTERM integration. Intended
// for tests and for embedders that own signal dispatch themselves.
func WithoutSignalHandling() Option {
	return func(c *managerConfig) {
		c.skipSignal = true
	}
}
