//go:build windows

package resource

import (
	"log/slog"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// redeliver re-raises an interrupt on Windows. Ctrl-C can be regenerated as
// a console event; SIGTERM has no console equivalent, so the process exits
// with the conventional 128+signal code instead.
func redeliver(sig os.Signal, logger *slog.Logger) {
	code := 1
	if s, ok := sig.(syscall.Signal); ok {
		code = 128 + int(s)
	}

	if sig == os.Interrupt {
		if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0); err != nil {
			logger.Error("could not re-deliver interrupt", "error", err)
			os.Exit(code)
		}
		// The event is asynchronous; give the default handler a moment,
		// then exit regardless.
		time.Sleep(time.Second)
	}
	os.Exit(code)
}
