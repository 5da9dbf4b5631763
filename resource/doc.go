// Package resource tracks everything shipcheck creates or mutates while
// validating delivery scripts, so that nothing outlives a run by accident.
//
// It provides two cooperating facilities. The registry hands out temp files
// and directories under a manager-owned root and guarantees cleanup on
// success, failure, interrupt, and process exit. Execution-state snapshots
// capture the byte-exact contents of files a script is allowed to touch and
// restore them when the script fails or the process is interrupted, with a
// persisted on-disk record so a fresh process can roll back for one that
// died.
//
// A Manager installs handlers for SIGINT and SIGTERM at construction (unless
// disabled) that restore every still-active snapshot, clean up the registry,
// and then re-deliver the signal so exit status and job control behave as if
// shipcheck had never caught it.
package resource
