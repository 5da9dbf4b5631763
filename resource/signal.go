package resource

import (
	"os"
	"os/signal"
	"syscall"
)

// installSignalHandler starts the interrupt integration: on SIGINT or
// SIGTERM every still-active execution state is restored, the registry is
// cleaned, and the signal is re-delivered with its default disposition so
// the exit status is the one callers of shipcheck expect.
func (m *Manager) installSignalHandler() {
	m.signalCh = make(chan os.Signal, 1)
	m.signalDone = make(chan struct{})
	signal.Notify(m.signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(m.signalDone)
		sig, ok := <-m.signalCh
		if !ok {
			return
		}
		m.handleSignal(sig)
	}()
}

// stopSignalHandler detaches from signal delivery and waits for the watcher
// goroutine to finish. Safe to call when handling was never installed.
func (m *Manager) stopSignalHandler() {
	if m.signalCh == nil {
		return
	}
	signal.Stop(m.signalCh)
	close(m.signalCh)
	<-m.signalDone
	m.signalCh = nil
}

// handleSignal is the interrupt path: roll back, clean up, then get out of
// the way and let the signal do what it would have done.
func (m *Manager) handleSignal(sig os.Signal) {
	m.interruptCleanup(sig)
	signal.Reset(sig)
	redeliver(sig, m.logger)
}

// interruptCleanup restores every active state and cleans the registry. It
// is the testable half of handleSignal: everything except re-delivery.
func (m *Manager) interruptCleanup(sig os.Signal) {
	m.interrupted.Store(true)
	m.logger.Warn("interrupt received, rolling back active executions", "signal", sig.String())

	m.mu.Lock()
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.RestoreExecutionState(id)
	}
	m.CleanupAll()
}

// Interrupted reports whether a SIGINT/SIGTERM was observed.
func (m *Manager) Interrupted() bool {
	return m.interrupted.Load()
}
