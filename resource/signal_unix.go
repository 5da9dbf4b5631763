//go:build !windows

package resource

import (
	"log/slog"
	"os"
	"syscall"
)

// redeliver re-raises sig against this process. The handler has already been
// reset, so the default disposition terminates the process with the correct
// wait status for the parent shell or job controller.
func redeliver(sig os.Signal, logger *slog.Logger) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		os.Exit(1)
	}
	if err := syscall.Kill(syscall.Getpid(), s); err != nil {
		logger.Error("could not re-deliver signal", "signal", sig.String(), "error", err)
		os.Exit(128 + int(s))
	}
}
