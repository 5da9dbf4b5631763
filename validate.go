package shipcheck

import (
	"context"
	"log/slog"
)

// Validate is a convenience function that creates a temporary Runner with
// DefaultConfig, validates a single script on every supported platform, and
// cleans up.
func Validate(ctx context.Context, path string, opts ...RunOption) ([]Validation, error) {
	script, err := NewScript(path)
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(DefaultConfig())
	if err != nil {
		return nil, err
	}
	defer func() { logCloseErr(runner.Close()) }()

	return runner.ValidateScript(ctx, script, opts...), nil
}

// ValidateAll is a convenience function that creates a temporary Runner with
// DefaultConfig, validates every script discovered under root, and cleans up.
func ValidateAll(ctx context.Context, root string, opts ...RunOption) ([]Validation, error) {
	runner, err := NewRunner(DefaultConfig())
	if err != nil {
		return nil, err
	}
	defer func() { logCloseErr(runner.Close()) }()

	return runner.ValidateAll(ctx, root, opts...)
}

// logCloseErr logs close errors using the default logger. The convenience
// functions don't have access to a configured logger, so slog.Debug is a
// best-effort.
func logCloseErr(err error) {
	if err != nil {
		slog.Debug("shipcheck: close error", "err", err)
	}
}
