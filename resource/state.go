package resource

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"
)

// ExecutionState is a pre-execution snapshot of everything a script run may
// damage: the contents of declared at-risk files plus an opt-in list of
// files the run created. A state is active from SaveExecutionState until
// DiscardExecutionState; RestoreExecutionState rolls the filesystem back to
// it.
type ExecutionState struct {
	// ID is derived from the capture timestamp.
	ID string
	// ScriptPath is the script the state was captured for.
	ScriptPath string
	// Timestamp is the capture time.
	Timestamp time.Time
	// WorkingDir is the process working directory at capture time.
	WorkingDir string
	// Env is a full copy of the environment at capture time.
	Env map[string]string
	// CreatedFiles are paths registered via TrackCreatedFile, deleted on
	// restore.
	CreatedFiles []string
	// ModifiedFiles maps each declared at-risk file to its byte-exact
	// pre-execution contents, rewritten on restore.
	ModifiedFiles map[string][]byte
	// Metadata carries caller-defined annotations.
	Metadata map[string]string
}

// SaveExecutionState captures a snapshot before a script runs: the working
// directory, the full environment, and a byte-exact backup of every listed
// file that exists. Listed files that do not exist are skipped with a debug
// log; restore cannot delete them unless they are also tracked as created.
// The state is held in memory and persisted to the state dir so a process
// that dies mid-run can still be rolled back.
func (m *Manager) SaveExecutionState(scriptPath string, backupFiles []string, metadata map[string]string) (*ExecutionState, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resource: reading working directory: %w", err)
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	modified := make(map[string][]byte)
	for _, path := range backupFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				m.logger.Debug("declared backup file does not exist, skipping", "path", path)
				continue
			}
			return nil, fmt.Errorf("resource: backing up %s: %w", path, err)
		}
		modified[path] = data
	}

	st := &ExecutionState{
		ID:            fmt.Sprintf("state-%d", time.Now().UnixNano()),
		ScriptPath:    scriptPath,
		Timestamp:     time.Now(),
		WorkingDir:    cwd,
		Env:           env,
		ModifiedFiles: modified,
	}
	if len(metadata) > 0 {
		st.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			st.Metadata[k] = v
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.states[st.ID] = st
	m.mu.Unlock()

	if err := writeStateFile(m.stateDir, st); err != nil {
		m.mu.Lock()
		delete(m.states, st.ID)
		m.mu.Unlock()
		return nil, fmt.Errorf("resource: persisting state %s: %w", st.ID, err)
	}

	m.logger.Debug("execution state saved",
		"state_id", st.ID, "script", scriptPath, "backed_up", len(modified))
	return st, nil
}

// TrackCreatedFile registers a file or directory the script created, so a
// restore deletes it. The persisted record is updated too.
func (m *Manager) TrackCreatedFile(stateID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[stateID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, stateID)
	}
	if slices.Contains(st.CreatedFiles, path) {
		return nil
	}
	st.CreatedFiles = append(st.CreatedFiles, path)

	if err := writeStateFile(m.stateDir, st); err != nil {
		return fmt.Errorf("resource: persisting state %s: %w", stateID, err)
	}
	return nil
}

// RestoreExecutionState rolls the filesystem back to a snapshot: every
// tracked created file is deleted and every backed-up file is rewritten
// byte-exactly. Individual failures are logged and skipped; the return value
// is true only if everything succeeded. A state not active in memory is
// loaded from its on-disk record, which is how a fresh process rolls back
// for one that died.
func (m *Manager) RestoreExecutionState(stateID string) bool {
	m.mu.Lock()
	st, ok := m.states[stateID]
	m.mu.Unlock()

	if !ok {
		loaded, err := readStateFile(m.stateDir, stateID)
		if err != nil {
			m.logger.Warn("no execution state to restore", "state_id", stateID, "error", err)
			return false
		}
		st = loaded
	}

	restored := true
	for _, path := range st.CreatedFiles {
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("could not delete created file", "state_id", stateID, "path", path, "error", err)
			restored = false
		}
	}
	for path, data := range st.ModifiedFiles {
		if err := os.WriteFile(path, data, backupFileMode(path)); err != nil {
			m.logger.Warn("could not restore file", "state_id", stateID, "path", path, "error", err)
			restored = false
		}
	}

	if restored {
		m.logger.Info("execution state restored", "state_id", stateID,
			"restored_files", len(st.ModifiedFiles), "deleted_files", len(st.CreatedFiles))
	}
	return restored
}

// backupFileMode preserves an existing file's permissions across a restore.
func backupFileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// DiscardExecutionState drops a snapshot from memory and removes its
// persisted record. Discarding an unknown state is a no-op.
func (m *Manager) DiscardExecutionState(stateID string) {
	m.mu.Lock()
	delete(m.states, stateID)
	m.mu.Unlock()

	if err := removeStateFile(m.stateDir, stateID); err != nil && !os.IsNotExist(err) {
		m.logger.Debug("could not remove state record", "state_id", stateID, "error", err)
	}
}

// ActiveStates returns a snapshot of the states currently held in memory.
func (m *Manager) ActiveStates() []*ExecutionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ExecutionState, 0, len(m.states))
	for _, st := range m.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// PersistedStates lists every on-disk state record, oldest first. Corrupt
// records are logged and skipped. This is the recovery surface for runs
// whose process died before restoring or discarding.
func (m *Manager) PersistedStates() ([]*ExecutionState, error) {
	ids, err := listStateFiles(m.stateDir)
	if err != nil {
		return nil, err
	}
	out := make([]*ExecutionState, 0, len(ids))
	for _, id := range ids {
		st, err := readStateFile(m.stateDir, id)
		if err != nil {
			m.logger.Warn("skipping unreadable state record", "state_id", id, "error", err)
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// ExecutionContext runs fn under a snapshot of the declared at-risk files.
// On success the snapshot is discarded. On error or panic the snapshot is
// restored, then discarded, and the original error or panic is propagated
// unchanged.
func (m *Manager) ExecutionContext(ctx context.Context, scriptPath string, backupFiles []string, metadata map[string]string, fn func(ctx context.Context) error) error {
	st, err := m.SaveExecutionState(scriptPath, backupFiles, metadata)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			m.RestoreExecutionState(st.ID)
			m.DiscardExecutionState(st.ID)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		m.RestoreExecutionState(st.ID)
		m.DiscardExecutionState(st.ID)
		return err
	}

	m.DiscardExecutionState(st.ID)
	return nil
}
