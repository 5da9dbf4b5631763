package shipcheck

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates the named files under root with placeholder contents.
func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll(%q) error: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte("placeholder\n"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q) error: %v", full, err)
		}
	}
}

func TestDiscoverScripts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"deploy.sh",
		"migrate.py",
		"README.md",
		"win/install.bat",
		"win/setup.ps1",
		"notes/plan.txt",
	)

	scripts, err := DiscoverScripts(root)
	if err != nil {
		t.Fatalf("DiscoverScripts() error: %v", err)
	}

	want := []struct {
		rel string
		typ ScriptType
	}{
		{"deploy.sh", Shell},
		{"migrate.py", Python},
		{"win/install.bat", Batch},
		{"win/setup.ps1", PowerShell},
	}

	if len(scripts) != len(want) {
		t.Fatalf("DiscoverScripts() returned %d scripts, want %d: %+v", len(scripts), len(want), scripts)
	}
	for i, w := range want {
		wantPath := filepath.Join(root, filepath.FromSlash(w.rel))
		if scripts[i].Path != wantPath {
			t.Errorf("scripts[%d].Path = %q, want %q", i, scripts[i].Path, wantPath)
		}
		if scripts[i].Type != w.typ {
			t.Errorf("scripts[%d].Type = %q, want %q", i, scripts[i].Type, w.typ)
		}
	}
}

// TestDiscoverScriptsSkipsDirs verifies that hidden and dependency
// directories are never descended into.
func TestDiscoverScriptsSkipsDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"deploy.sh",
		".git/hooks/pre-commit.sh",
		".hidden/skip.sh",
		"node_modules/dep/build.sh",
		"vendor/tool/run.sh",
		"__pycache__/cached.py",
	)

	scripts, err := DiscoverScripts(root)
	if err != nil {
		t.Fatalf("DiscoverScripts() error: %v", err)
	}

	if len(scripts) != 1 {
		t.Fatalf("DiscoverScripts() returned %d scripts, want 1: %+v", len(scripts), scripts)
	}
	if got, want := scripts[0].Path, filepath.Join(root, "deploy.sh"); got != want {
		t.Errorf("scripts[0].Path = %q, want %q", got, want)
	}
}

// TestDiscoverScriptsSingleFile verifies that root may name one script file
// directly.
func TestDiscoverScriptsSingleFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "deploy.sh")

	scripts, err := DiscoverScripts(filepath.Join(root, "deploy.sh"))
	if err != nil {
		t.Fatalf("DiscoverScripts() error: %v", err)
	}
	if len(scripts) != 1 {
		t.Fatalf("DiscoverScripts() returned %d scripts, want 1", len(scripts))
	}
	if scripts[0].Type != Shell {
		t.Errorf("Type = %q, want %q", scripts[0].Type, Shell)
	}
}

func TestDiscoverScriptsEmptyTree(t *testing.T) {
	scripts, err := DiscoverScripts(t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverScripts() error: %v", err)
	}
	if len(scripts) != 0 {
		t.Errorf("DiscoverScripts() returned %d scripts, want 0", len(scripts))
	}
}

func TestDiscoverScriptsMissingRoot(t *testing.T) {
	_, err := DiscoverScripts(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("DiscoverScripts() should fail for a missing root")
	}
}
