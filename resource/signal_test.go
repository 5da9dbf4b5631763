package resource

import (
	"bytes"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

// TestInterruptCleanup verifies the interrupt path short of re-delivery:
// active states are restored, the registry is cleaned, and the flag is set.
// The persisted records stay behind, like any other crash-shaped exit.
func TestInterruptCleanup(t *testing.T) {
	m := newTestManager(t)

	target := filepath.Join(t.TempDir(), "config.yaml")
	original := []byte("a: 1\n")
	if err := os.WriteFile(target, original, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	st, err := m.SaveExecutionState("deploy.sh", []string{target}, nil)
	if err != nil {
		t.Fatalf("SaveExecutionState() error: %v", err)
	}
	if err := os.WriteFile(target, []byte("a: broken\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	res, err := m.CreateTempFile("interrupted", ".txt", []byte("x"))
	if err != nil {
		t.Fatalf("CreateTempFile() error: %v", err)
	}

	if m.Interrupted() {
		t.Fatal("Interrupted() = true before any signal")
	}
	m.interruptCleanup(syscall.SIGINT)

	if !m.Interrupted() {
		t.Error("Interrupted() = false after the interrupt path ran")
	}
	data, _ := os.ReadFile(target)
	if !bytes.Equal(data, original) {
		t.Errorf("content = %q, want restored %q", data, original)
	}
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Error("temp resource survived the interrupt cleanup")
	}
	if _, err := os.Stat(statePath(m.StateDir(), st.ID)); err != nil {
		t.Errorf("persisted record should survive an interrupt: %v", err)
	}
}

// TestSignalHandlerLifecycle verifies installing and stopping the watcher
// does not wedge Close.
func TestSignalHandlerLifecycle(t *testing.T) {
	m, err := NewManager(
		WithBaseDir(filepath.Join(t.TempDir(), "base")),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if m.Interrupted() {
		t.Error("Interrupted() = true with no signal delivered")
	}
}
