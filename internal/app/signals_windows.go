//go:build windows

package app

import (
	"fmt"
	"os"
)

// shutdownSignals are the OS signals that trigger graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt}

// stopDaemon terminates the daemon named in the PID file.
func stopDaemon() error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil || !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}

	// Windows has no SIGTERM; Kill ends the process immediately and the
	// daemon's own cleanup does not run.
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	_ = os.Remove(pidFilePath())
	fmt.Printf("Stopped daemon (PID %d)\n", pid)
	return nil
}

// processExists reports whether pid is running. FindProcess opens a handle
// and fails for a process that has exited.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
