package shipcheck

import (
	"github.com/shipcheck/shipcheck/platform"
)

// RunOption configures a single ValidateScript or ValidateAll call.
type RunOption func(*runOptions)

// runOptions holds per-run configuration applied via RunOption functions.
type runOptions struct {
	args        []string
	backupFiles []string
	metadata    map[string]string
	platforms   []platform.Platform
}

// mergeRunOptions applies per-run RunOption functions and returns the result.
func mergeRunOptions(opts ...RunOption) *runOptions {
	ro := &runOptions{}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}

// WithArgs passes additional arguments to the script for a single run.
func WithArgs(args ...string) RunOption {
	cpy := append([]string(nil), args...)
	return func(o *runOptions) {
		o.args = append(o.args, cpy...)
	}
}

// WithBackupFiles declares files the script is expected to modify. Their
// contents are captured before the run and restored byte-for-byte when the
// run fails. Declared files that do not exist yet are skipped.
func WithBackupFiles(paths ...string) RunOption {
	cpy := append([]string(nil), paths...)
	return func(o *runOptions) {
		o.backupFiles = append(o.backupFiles, cpy...)
	}
}

// WithMetadata attaches key/value annotations to the run's execution state.
// The map is copied to prevent aliasing.
func WithMetadata(md map[string]string) RunOption {
	cpy := make(map[string]string, len(md))
	for k, v := range md {
		cpy[k] = v
	}
	return func(o *runOptions) {
		if o.metadata == nil {
			o.metadata = make(map[string]string, len(cpy))
		}
		for k, v := range cpy {
			o.metadata[k] = v
		}
	}
}

// WithPlatforms restricts a single run to the given target platforms,
// overriding the configured set.
func WithPlatforms(platforms ...platform.Platform) RunOption {
	cpy := append([]platform.Platform(nil), platforms...)
	return func(o *runOptions) {
		o.platforms = cpy
	}
}
