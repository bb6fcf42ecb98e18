//go:build !windows

// Package process tears down stray browser process trees left behind by
// interrupted editor automation runs.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup after the editor browser closes; error ignored as
	// the launcher already tried a graceful kill
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
