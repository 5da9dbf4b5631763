//go:build !linux && !darwin && !windows

package resource

import "errors"

// freeDiskSpace is unsupported here; EnsureDiskSpace treats that as
// unknowable rather than insufficient.
func freeDiskSpace(string) (uint64, error) {
	return 0, errors.ErrUnsupported
}
