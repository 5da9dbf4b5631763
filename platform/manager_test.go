package platform

import (
	"errors"
	"runtime"
	"testing"
)

// TestNewManagerRegistersAllPlatforms verifies the fixed adapter table covers
// every known platform and each adapter reports its own platform.
func TestNewManagerRegistersAllPlatforms(t *testing.T) {
	m := NewManager()
	for _, p := range Platforms() {
		adapter, err := m.Adapter(p)
		if err != nil {
			t.Fatalf("Adapter(%q) error: %v", p, err)
		}
		if adapter.Platform() != p {
			t.Errorf("Adapter(%q).Platform() = %q", p, adapter.Platform())
		}
	}
}

// TestManagerAdapterUnknown verifies the sentinel for platforms outside the
// table.
func TestManagerAdapterUnknown(t *testing.T) {
	m := NewManager()
	if _, err := m.Adapter(Platform("freebsd")); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Adapter(\"freebsd\") error = %v, want ErrNotRegistered", err)
	}
}

// TestManagerCurrent verifies the platform cached at construction matches
// detection.
func TestManagerCurrent(t *testing.T) {
	if got, want := NewManager().Current(), Detect(); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
}

// TestManagerAvailabilityExclusive verifies that on supported hosts exactly
// one platform reports available and it is the detected one.
func TestManagerAvailabilityExclusive(t *testing.T) {
	m := NewManager()
	var available []Platform
	for _, p := range Platforms() {
		if m.Available(p) {
			available = append(available, p)
		}
	}

	switch runtime.GOOS {
	case "linux", "windows":
		if len(available) != 1 {
			t.Fatalf("available platforms = %v, want exactly one", available)
		}
		if available[0] != m.Current() {
			t.Errorf("available platform = %q, current = %q", available[0], m.Current())
		}
	default:
		if len(available) != 0 {
			t.Errorf("available platforms = %v on %s, want none", available, runtime.GOOS)
		}
	}
}

func TestManagerAvailableUnknownPlatform(t *testing.T) {
	if NewManager().Available(Platform("freebsd")) {
		t.Error("Available(\"freebsd\") = true, want false")
	}
}

// TestWithWSLDistro verifies the distro pin reaches the WSL adapter.
func TestWithWSLDistro(t *testing.T) {
	t.Setenv("WSL_DISTRO_NAME", "")

	m := NewManager(WithWSLDistro("Ubuntu-24.04"))
	adapter, err := m.Adapter(WSL)
	if err != nil {
		t.Fatalf("Adapter(WSL) error: %v", err)
	}
	wsl, ok := adapter.(*wslAdapter)
	if !ok {
		t.Fatalf("Adapter(WSL) is %T, want *wslAdapter", adapter)
	}
	if wsl.distro != "Ubuntu-24.04" {
		t.Errorf("distro = %q, want %q", wsl.distro, "Ubuntu-24.04")
	}
}

// TestWithExtraEnvCopies verifies the option captures a copy of the caller's
// slice.
func TestWithExtraEnvCopies(t *testing.T) {
	env := []string{"DEPLOY_ENV=staging"}
	opt := WithExtraEnv(env...)
	env[0] = "DEPLOY_ENV=mutated"

	var cfg adapterConfig
	opt(&cfg)
	if cfg.extraEnv[0] != "DEPLOY_ENV=staging" {
		t.Errorf("extraEnv[0] = %q, want the value at option construction", cfg.extraEnv[0])
	}
}

// TestWithLoggerNil verifies a nil logger is ignored rather than installed.
func TestWithLoggerNil(t *testing.T) {
	cfg := adapterConfig{logger: testLogger()}
	WithLogger(nil)(&cfg)
	if cfg.logger == nil {
		t.Error("WithLogger(nil) cleared the logger")
	}
}
