package resource

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// stateFileExt is the suffix of persisted execution-state records.
const stateFileExt = ".json"

// persistedState is the on-disk form of an ExecutionState. File contents are
// hex-encoded so the record is valid JSON regardless of what bytes the
// backups hold.
type persistedState struct {
	StateID       string            `json:"state_id"`
	ScriptPath    string            `json:"script_path"`
	Timestamp     time.Time         `json:"timestamp"`
	WorkingDir    string            `json:"working_directory"`
	Env           map[string]string `json:"environment_variables"`
	CreatedFiles  []string          `json:"created_files"`
	ModifiedFiles map[string]string `json:"modified_files"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func statePath(stateDir, id string) string {
	return filepath.Join(stateDir, id+stateFileExt)
}

// writeStateFile persists one state record atomically: the record is written
// to a temp file in the state dir, synced, and renamed into place, so a
// crash never leaves a partial record behind.
func writeStateFile(stateDir string, st *ExecutionState) error {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return err
	}

	rec := persistedState{
		StateID:      st.ID,
		ScriptPath:   st.ScriptPath,
		Timestamp:    st.Timestamp,
		WorkingDir:   st.WorkingDir,
		Env:          st.Env,
		CreatedFiles: st.CreatedFiles,
		Metadata:     st.Metadata,
	}
	rec.ModifiedFiles = make(map[string]string, len(st.ModifiedFiles))
	for path, data := range st.ModifiedFiles {
		rec.ModifiedFiles[path] = hex.EncodeToString(data)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(statePath(stateDir, st.ID), data, 0o600)
}

// readStateFile loads and decodes one persisted record. Unknown fields are
// rejected so a foreign or damaged file cannot silently half-load.
func readStateFile(stateDir, id string) (*ExecutionState, error) {
	data, err := os.ReadFile(statePath(stateDir, id))
	if err != nil {
		return nil, err
	}

	var rec persistedState
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding state record: %w", err)
	}
	if rec.StateID == "" {
		return nil, fmt.Errorf("state record %s has no state_id", id)
	}

	st := &ExecutionState{
		ID:           rec.StateID,
		ScriptPath:   rec.ScriptPath,
		Timestamp:    rec.Timestamp,
		WorkingDir:   rec.WorkingDir,
		Env:          rec.Env,
		CreatedFiles: rec.CreatedFiles,
		Metadata:     rec.Metadata,
	}
	st.ModifiedFiles = make(map[string][]byte, len(rec.ModifiedFiles))
	for path, encoded := range rec.ModifiedFiles {
		raw, err := hex.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding backup of %s: %w", path, err)
		}
		st.ModifiedFiles[path] = raw
	}
	return st, nil
}

func removeStateFile(stateDir, id string) error {
	return os.Remove(statePath(stateDir, id))
}

// listStateFiles returns the IDs of every record in the state dir. A missing
// dir means no records.
func listStateFiles(stateDir string) ([]string, error) {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resource: reading state dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, stateFileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, stateFileExt))
	}
	return ids, nil
}

// writeFileAtomic writes data to path via a temp file in the same directory
// and a rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
