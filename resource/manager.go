package resource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// defaultStaleAge is how old an on-disk temp resource must be before the
// low-disk-space sweep reclaims it.
const defaultStaleAge = time.Hour

// Manager owns a registry of tracked resources and a set of active
// execution-state snapshots. All registry operations are safe for concurrent
// use.
type Manager struct {
	logger   *slog.Logger
	baseDir  string
	stateDir string
	staleAge time.Duration

	mu        sync.Mutex
	closed    bool
	resources map[string]*Resource
	states    map[string]*ExecutionState

	interrupted atomic.Bool
	signalCh    chan os.Signal
	signalDone  chan struct{}
}

// NewManager builds a Manager and, unless disabled, installs the interrupt
// integration. Directories are created lazily on first use; construction
// fails only when a configured root exists and is not a directory.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := managerConfig{
		logger:   slog.Default(),
		baseDir:  filepath.Join(os.TempDir(), "shipcheck"),
		staleAge: defaultStaleAge,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.stateDir == "" {
		cfg.stateDir = filepath.Join(cfg.baseDir, "state")
	}

	for _, dir := range []string{cfg.baseDir, cfg.stateDir} {
		info, err := os.Stat(dir)
		if err == nil && !info.IsDir() {
			return nil, fmt.Errorf("resource: %s exists and is not a directory", dir)
		}
	}

	m := &Manager{
		logger:    cfg.logger,
		baseDir:   cfg.baseDir,
		stateDir:  cfg.stateDir,
		staleAge:  cfg.staleAge,
		resources: make(map[string]*Resource),
		states:    make(map[string]*ExecutionState),
	}
	if !cfg.skipSignal {
		m.installSignalHandler()
	}
	return m, nil
}

// BaseDir returns the root under which temp resources are allocated.
func (m *Manager) BaseDir() string { return m.baseDir }

// StateDir returns where execution-state records are persisted.
func (m *Manager) StateDir() string { return m.stateDir }

func (m *Manager) ensureBaseDir() error {
	return os.MkdirAll(m.baseDir, 0o700)
}

// CreateTempFile allocates a file under the base root, writes content to it,
// and registers it before returning, so no failure mode can leak it.
func (m *Manager) CreateTempFile(prefix, suffix string, content []byte) (*Resource, error) {
	if err := m.ensureBaseDir(); err != nil {
		return nil, fmt.Errorf("resource: creating base dir: %w", err)
	}
	f, err := os.CreateTemp(m.baseDir, prefix+"-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("resource: creating temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("resource: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("resource: closing temp file: %w", err)
	}

	res := &Resource{
		ID:        uuid.NewString(),
		Type:      File,
		Path:      path,
		CreatedAt: time.Now(),
	}
	if err := m.Register(res); err != nil {
		os.Remove(path)
		return nil, err
	}
	return res, nil
}

// CreateTempDir allocates a directory under the base root and registers it
// before returning.
func (m *Manager) CreateTempDir(prefix string) (*Resource, error) {
	if err := m.ensureBaseDir(); err != nil {
		return nil, fmt.Errorf("resource: creating base dir: %w", err)
	}
	path, err := os.MkdirTemp(m.baseDir, prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("resource: creating temp dir: %w", err)
	}

	res := &Resource{
		ID:        uuid.NewString(),
		Type:      Directory,
		Path:      path,
		CreatedAt: time.Now(),
	}
	if err := m.Register(res); err != nil {
		os.RemoveAll(path)
		return nil, err
	}
	return res, nil
}

// Register adopts an external resource into the registry. A resource with no
// ID is assigned one.
func (m *Manager) Register(res *Resource) error {
	if res == nil {
		return fmt.Errorf("resource: cannot register a nil resource")
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	if _, exists := m.resources[res.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateResource, res.ID)
	}
	m.resources[res.ID] = res
	return nil
}

// Unregister removes a resource from the registry without cleaning it up.
// It reports whether the resource was present.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.resources[id]
	delete(m.resources, id)
	return ok
}

// Resources returns a snapshot of the registry.
func (m *Manager) Resources() []*Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Resource, 0, len(m.resources))
	for _, res := range m.resources {
		out = append(out, res)
	}
	return out
}

// CleanupResource removes a resource from the registry and cleans it up.
// It is idempotent: an unknown ID reports true. A failed cleanup attempt is
// logged, the resource is still removed, and false is returned.
func (m *Manager) CleanupResource(id string) bool {
	m.mu.Lock()
	res, ok := m.resources[id]
	delete(m.resources, id)
	m.mu.Unlock()

	if !ok {
		return true
	}
	return m.cleanup(res)
}

// cleanup performs one resource's cleanup. A custom callback takes
// precedence over path-based removal.
func (m *Manager) cleanup(res *Resource) bool {
	var err error
	switch {
	case res.Cleanup != nil:
		err = res.Cleanup()
	case res.Path == "":
		// Nothing to do; a pathless resource without a callback is
		// tracking-only.
	case res.Type == Directory:
		err = os.RemoveAll(res.Path)
	default:
		if err = os.Remove(res.Path); os.IsNotExist(err) {
			err = nil
		}
	}
	if err != nil {
		m.logger.Warn("resource cleanup failed",
			"id", res.ID, "type", string(res.Type), "path", res.Path, "error", err)
		return false
	}
	return true
}

// CleanupAll snapshots the registry under the mutex, empties it, and cleans
// every resource. The returned map records per-resource success. A second
// immediate call returns an empty map.
func (m *Manager) CleanupAll() map[string]bool {
	m.mu.Lock()
	snapshot := m.resources
	m.resources = make(map[string]*Resource)
	m.mu.Unlock()

	results := make(map[string]bool, len(snapshot))
	for id, res := range snapshot {
		results[id] = m.cleanup(res)
	}
	return results
}

// WithTempFile allocates a temp file with the given content, runs fn with
// its path, and cleans it up on every exit path.
func (m *Manager) WithTempFile(prefix, suffix string, content []byte, fn func(path string) error) error {
	res, err := m.CreateTempFile(prefix, suffix, content)
	if err != nil {
		return err
	}
	defer m.CleanupResource(res.ID)
	return fn(res.Path)
}

// WithTempDir allocates a temp directory, runs fn with its path, and cleans
// it up on every exit path.
func (m *Manager) WithTempDir(prefix string, fn func(dir string) error) error {
	res, err := m.CreateTempDir(prefix)
	if err != nil {
		return err
	}
	defer m.CleanupResource(res.ID)
	return fn(res.Path)
}

// SweepOlderThan removes entries under the base root whose modification time
// is older than age, regardless of whether this process created them. This
// is how a fresh process reclaims the leftovers of one that died. A zero age
// removes everything present. The state directory is never swept.
func (m *Manager) SweepOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("resource: reading base dir: %w", err)
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		path := filepath.Join(m.baseDir, entry.Name())
		if path == m.stateDir {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("sweep could not remove entry", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Debug("swept stale temp resources", "removed", removed, "older_than", age.String())
	}
	return removed, nil
}

// EnsureDiskSpace checks free space on the base root's filesystem. If it is
// short, resources older than the stale age are swept and the check repeats
// once. Still short means an error wrapping ErrInsufficientDiskSpace. A host
// where free space cannot be determined never blocks execution.
func (m *Manager) EnsureDiskSpace(required uint64) error {
	if err := m.ensureBaseDir(); err != nil {
		return fmt.Errorf("resource: creating base dir: %w", err)
	}

	free, err := freeDiskSpace(m.baseDir)
	if err != nil {
		m.logger.Debug("free disk space probe unavailable", "path", m.baseDir, "error", err)
		return nil
	}
	if free >= required {
		return nil
	}

	m.logger.Info("low disk space, sweeping stale temp resources",
		"free", free, "required", required, "stale_age", m.staleAge.String())
	if _, err := m.SweepOlderThan(m.staleAge); err != nil {
		m.logger.Warn("stale sweep failed", "error", err)
	}

	free, err = freeDiskSpace(m.baseDir)
	if err == nil && free >= required {
		return nil
	}
	return fmt.Errorf("%w: need %d bytes, %d available under %s",
		ErrInsufficientDiskSpace, required, free, m.baseDir)
}

// Close stops the interrupt integration and cleans up every tracked
// resource. The entry point defers it so a normal exit releases everything;
// calling it twice is safe.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.stopSignalHandler()

	failed := 0
	for _, ok := range m.CleanupAll() {
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("resource: %d resources failed to clean up", failed)
	}
	return nil
}
