package shipcheck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipcheck/shipcheck/platform"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if len(cfg.Platforms) != 3 {
		t.Errorf("Platforms: got %d entries, want 3", len(cfg.Platforms))
	}

	if cfg.TempDir != "" {
		t.Errorf("TempDir: got %q, want empty", cfg.TempDir)
	}
	if cfg.StateDir != "" {
		t.Errorf("StateDir: got %q, want empty", cfg.StateDir)
	}

	if cfg.MaxOutputBytes != defaultMaxOutputBytes {
		t.Errorf("MaxOutputBytes: got %d, want %d", cfg.MaxOutputBytes, defaultMaxOutputBytes)
	}
	if cfg.StaleAgeMinutes != defaultStaleAgeMinutes {
		t.Errorf("StaleAgeMinutes: got %d, want %d", cfg.StaleAgeMinutes, defaultStaleAgeMinutes)
	}

	if cfg.WSLDistro != "" {
		t.Errorf("WSLDistro: got %q, want empty", cfg.WSLDistro)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestHostConfig(t *testing.T) {
	cfg := HostConfig()

	if cfg == nil {
		t.Fatal("HostConfig() returned nil")
	}
	if len(cfg.Platforms) != 1 {
		t.Fatalf("Platforms: got %d entries, want 1", len(cfg.Platforms))
	}
	if cfg.Platforms[0] != platform.Detect() {
		t.Errorf("Platforms[0] = %q, want %q", cfg.Platforms[0], platform.Detect())
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("HostConfig().Validate() error: %v", err)
	}
}

func TestCIConfig(t *testing.T) {
	cfg := CIConfig()

	if cfg == nil {
		t.Fatal("CIConfig() returned nil")
	}
	if len(cfg.Platforms) != 1 || cfg.Platforms[0] != Linux {
		t.Errorf("Platforms: got %v, want [linux]", cfg.Platforms)
	}
	if cfg.StaleAgeMinutes != 15 {
		t.Errorf("StaleAgeMinutes: got %d, want 15", cfg.StaleAgeMinutes)
	}

	// Other defaults are preserved from DefaultConfig.
	if cfg.MaxOutputBytes != defaultMaxOutputBytes {
		t.Errorf("MaxOutputBytes: got %d, want %d", cfg.MaxOutputBytes, defaultMaxOutputBytes)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("CIConfig().Validate() error: %v", err)
	}
}

func TestValidateEmptyPlatforms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platforms = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for empty Platforms")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
}

func TestValidateUnknownPlatform(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platforms = []platform.Platform{"freebsd"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for an unknown platform")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
	if !strings.Contains(err.Error(), "freebsd") {
		t.Errorf("error should name the unknown platform, got: %v", err)
	}
}

func TestValidateDuplicatePlatform(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platforms = []platform.Platform{Linux, Linux}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for a duplicate platform")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention the duplicate, got: %v", err)
	}
}

func TestValidateNegativeMaxOutputBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputBytes = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for negative MaxOutputBytes")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
}

func TestValidateNegativeStaleAge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StaleAgeMinutes = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for negative StaleAgeMinutes")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
}

func TestValidateEnvEntries(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"key value", "DEPLOY_ENV=staging", false},
		{"empty value", "DEPLOY_ENV=", false},
		{"value with equals", "OPTS=a=b", false},
		{"no equals", "DEPLOY_ENV", true},
		{"empty key", "=staging", true},
		{"empty entry", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Env = []string{tt.entry}

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() should reject Env entry %q", tt.entry)
				}
				if !errors.Is(err, ErrConfigInvalid) {
					t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("Validate() rejected valid Env entry %q: %v", tt.entry, err)
			}
		})
	}
}

func TestValidateWSLDistroWhitespace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WSLDistro = "Ubuntu 24.04"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject a WSL distro name with whitespace")
	}
	if !strings.Contains(err.Error(), "WSLDistro") {
		t.Errorf("error should mention WSLDistro, got: %v", err)
	}
}

func TestValidateNullByteInTempDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempDir = "/tmp/\x00bad"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject a TempDir with null bytes")
	}
	if !strings.Contains(err.Error(), "null bytes") {
		t.Errorf("error should mention null bytes, got: %v", err)
	}
}

func TestValidateStateDirEqualsTempDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempDir = "/scratch/shipcheck"
	cfg.StateDir = "/scratch/shipcheck"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject StateDir equal to TempDir")
	}
	if !strings.Contains(err.Error(), "StateDir") {
		t.Errorf("error should mention StateDir, got: %v", err)
	}
}

func TestValidateMultipleErrors(t *testing.T) {
	cfg := &Config{
		Platforms:       []platform.Platform{"freebsd"},
		MaxOutputBytes:  -1,
		StaleAgeMinutes: -1,
		Env:             []string{"BROKEN"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should return error for multiple invalid fields")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
	// All issues are joined into one message.
	msg := err.Error()
	for _, frag := range []string{"freebsd", "MaxOutputBytes", "StaleAgeMinutes", "Env[0]"} {
		if !strings.Contains(msg, frag) {
			t.Errorf("error message missing %q: %v", frag, msg)
		}
	}
}

func TestDeepCopyConfig(t *testing.T) {
	orig := DefaultConfig()
	orig.Env = []string{"DEPLOY_ENV=staging"}

	cp := deepCopyConfig(orig)

	// Mutate the copy and verify the original is unchanged.
	cp.Platforms[0] = "freebsd"
	cp.Env[0] = "DEPLOY_ENV=prod"

	if orig.Platforms[0] == "freebsd" {
		t.Error("deepCopyConfig aliased Platforms")
	}
	if orig.Env[0] != "DEPLOY_ENV=staging" {
		t.Error("deepCopyConfig aliased Env")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	contents := `platforms: [linux, wsl]
temp_dir: /scratch/shipcheck/work
max_output_bytes: 4096
stale_age_minutes: 30
env:
  - DEPLOY_ENV=staging
wsl_distro: Ubuntu-24.04
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if len(cfg.Platforms) != 2 || cfg.Platforms[0] != Linux || cfg.Platforms[1] != WSL {
		t.Errorf("Platforms = %v, want [linux wsl]", cfg.Platforms)
	}
	if cfg.TempDir != "/scratch/shipcheck/work" {
		t.Errorf("TempDir = %q, want /scratch/shipcheck/work", cfg.TempDir)
	}
	if cfg.MaxOutputBytes != 4096 {
		t.Errorf("MaxOutputBytes = %d, want 4096", cfg.MaxOutputBytes)
	}
	if cfg.StaleAgeMinutes != 30 {
		t.Errorf("StaleAgeMinutes = %d, want 30", cfg.StaleAgeMinutes)
	}
	if len(cfg.Env) != 1 || cfg.Env[0] != "DEPLOY_ENV=staging" {
		t.Errorf("Env = %v, want [DEPLOY_ENV=staging]", cfg.Env)
	}
	if cfg.WSLDistro != "Ubuntu-24.04" {
		t.Errorf("WSLDistro = %q, want Ubuntu-24.04", cfg.WSLDistro)
	}
}

// TestLoadConfigKeepsDefaults verifies that fields absent from the file keep
// their DefaultConfig values.
func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := os.WriteFile(path, []byte("platforms: [linux]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if len(cfg.Platforms) != 1 || cfg.Platforms[0] != Linux {
		t.Errorf("Platforms = %v, want [linux]", cfg.Platforms)
	}
	if cfg.MaxOutputBytes != defaultMaxOutputBytes {
		t.Errorf("MaxOutputBytes = %d, want default %d", cfg.MaxOutputBytes, defaultMaxOutputBytes)
	}
	if cfg.StaleAgeMinutes != defaultStaleAgeMinutes {
		t.Errorf("StaleAgeMinutes = %d, want default %d", cfg.StaleAgeMinutes, defaultStaleAgeMinutes)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("SHIPCHECK_TEST_SCRATCH", "/scratch/ci")

	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := os.WriteFile(path, []byte("temp_dir: ${SHIPCHECK_TEST_SCRATCH}/work\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.TempDir != "/scratch/ci/work" {
		t.Errorf("TempDir = %q, want /scratch/ci/work", cfg.TempDir)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := os.WriteFile(path, []byte("platforms: [linux\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() should fail on malformed YAML")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := os.WriteFile(path, []byte("platforms: [freebsd]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() should reject an unknown platform")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("error should wrap ErrConfigInvalid, got: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() should fail for a missing file")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	orig := DefaultConfig()
	orig.Platforms = []platform.Platform{Linux}
	orig.TempDir = "/scratch/shipcheck/work"
	orig.StaleAgeMinutes = 45
	orig.Env = []string{"DEPLOY_ENV=staging"}
	orig.WSLDistro = "Ubuntu-24.04"

	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := SaveConfig(orig, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if len(loaded.Platforms) != 1 || loaded.Platforms[0] != Linux {
		t.Errorf("Platforms = %v, want [linux]", loaded.Platforms)
	}
	if loaded.TempDir != orig.TempDir {
		t.Errorf("TempDir = %q, want %q", loaded.TempDir, orig.TempDir)
	}
	if loaded.StaleAgeMinutes != orig.StaleAgeMinutes {
		t.Errorf("StaleAgeMinutes = %d, want %d", loaded.StaleAgeMinutes, orig.StaleAgeMinutes)
	}
	if len(loaded.Env) != 1 || loaded.Env[0] != orig.Env[0] {
		t.Errorf("Env = %v, want %v", loaded.Env, orig.Env)
	}
	if loaded.WSLDistro != orig.WSLDistro {
		t.Errorf("WSLDistro = %q, want %q", loaded.WSLDistro, orig.WSLDistro)
	}
}
