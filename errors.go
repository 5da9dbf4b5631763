package shipcheck

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the shipcheck package.
var (
	// ErrUnknownScriptType indicates a file whose extension maps to no
	// supported script type.
	ErrUnknownScriptType = errors.New("shipcheck: unknown script type")

	// ErrConfigInvalid indicates the provided configuration failed validation.
	ErrConfigInvalid = errors.New("shipcheck: invalid configuration")

	// ErrRunnerClosed indicates the runner has already been closed via Close.
	ErrRunnerClosed = errors.New("shipcheck: runner already closed")
)

// UnknownScriptTypeError is returned when a script path cannot be classified.
// It wraps ErrUnknownScriptType so that errors.Is(err, ErrUnknownScriptType)
// still works.
type UnknownScriptTypeError struct {
	// Path is the script path that could not be classified.
	Path string
}

func (e *UnknownScriptTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownScriptType.Error(), e.Path)
}

func (e *UnknownScriptTypeError) Unwrap() error {
	return ErrUnknownScriptType
}
