package platform

import (
	"context"
	"fmt"
	"log/slog"
)

// adapterConfig carries the knobs shared by every adapter.
type adapterConfig struct {
	logger    *slog.Logger
	extraEnv  []string
	maxOutput int
	wslDistro string
}

// Option configures a Manager and the adapters it builds.
type Option func(*adapterConfig)

// WithLogger sets the logger used by the manager and its adapters.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *adapterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithExtraEnv appends KEY=VALUE pairs applied to every script environment,
// overriding inherited variables on key collision.
func WithExtraEnv(env ...string) Option {
	cpy := append([]string(nil), env...)
	return func(c *adapterConfig) {
		c.extraEnv = append(c.extraEnv, cpy...)
	}
}

// WithMaxOutput limits captured stdout and stderr to n bytes each.
// 0 (the default) captures everything.
func WithMaxOutput(n int) Option {
	return func(c *adapterConfig) {
		c.maxOutput = n
	}
}

// WithWSLDistro pins the WSL distro used for bridged dispatch instead of
// letting wsl.exe pick the default.
func WithWSLDistro(name string) Option {
	return func(c *adapterConfig) {
		c.wslDistro = name
	}
}

// Manager detects the host platform once at construction and routes
// execution and availability requests to a fixed table of adapters.
type Manager struct {
	logger   *slog.Logger
	current  Platform
	adapters map[Platform]Adapter
}

// NewManager detects the current platform and assembles the adapter table.
func NewManager(opts ...Option) *Manager {
	cfg := adapterConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		logger:  cfg.logger,
		current: Detect(),
		adapters: map[Platform]Adapter{
			Windows: &windowsAdapter{cfg: cfg},
			WSL:     newWSLAdapter(cfg),
			Linux:   &linuxAdapter{cfg: cfg},
		},
	}
}

// Current returns the platform detected at construction.
func (m *Manager) Current() Platform {
	return m.current
}

// Adapter returns the adapter for a platform. Asking for a platform outside
// the table is a programmer error and surfaces synchronously.
func (m *Manager) Adapter(p Platform) (Adapter, error) {
	adapter, ok := m.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, p)
	}
	return adapter, nil
}

// Available reports live availability of a platform, independent of the
// platform cached at construction.
func (m *Manager) Available(p Platform) bool {
	adapter, ok := m.adapters[p]
	return ok && adapter.Available()
}

// CurrentEnvironmentInfo describes the environment of the detected current
// platform.
func (m *Manager) CurrentEnvironmentInfo(ctx context.Context) *EnvironmentInfo {
	adapter, err := m.Adapter(m.current)
	if err != nil {
		return &EnvironmentInfo{Platform: m.current}
	}
	return adapter.EnvironmentInfo(ctx)
}
