package resource

import "errors"

// Sentinel errors returned by the resource package.
var (
	// ErrManagerClosed is returned when registering or creating resources
	// after Close.
	ErrManagerClosed = errors.New("resource: manager closed")

	// ErrDuplicateResource is returned by Register for an ID already in
	// the registry.
	ErrDuplicateResource = errors.New("resource: resource already registered")

	// ErrUnknownState is returned when an execution state ID is not
	// active in this manager.
	ErrUnknownState = errors.New("resource: unknown execution state")

	// ErrInsufficientDiskSpace is returned by EnsureDiskSpace when the
	// base root is still short after sweeping stale resources.
	ErrInsufficientDiskSpace = errors.New("resource: insufficient disk space")
)
