package resource

import "time"

// ResourceType classifies a tracked resource for cleanup dispatch.
type ResourceType string

const (
	// File is a regular file removed with os.Remove.
	File ResourceType = "file"
	// Directory is a directory tree removed with os.RemoveAll.
	Directory ResourceType = "directory"
	// Process is an external process; cleanup requires a custom callback.
	Process ResourceType = "process"
	// Lock is a lock file removed with os.Remove.
	Lock ResourceType = "lock"
)

// Resource is one tracked entity owned by a Manager. Resources created by
// the manager (CreateTempFile, CreateTempDir) are fully populated; adopted
// resources (Register) may carry a custom Cleanup callback, which takes
// precedence over path-based removal.
type Resource struct {
	// ID uniquely identifies the resource within its manager.
	ID string
	// Type selects the default cleanup strategy.
	Type ResourceType
	// Path is the filesystem location, when the resource has one.
	Path string
	// CreatedAt records when the resource was registered.
	CreatedAt time.Time
	// Metadata carries caller-defined annotations.
	Metadata map[string]string
	// Cleanup, when set, replaces the default path-based removal.
	Cleanup func() error
}
