//go:build !windows

// Package procutil configures and terminates engine process trees.
// Conversion engines often spawn helper processes (LibreOffice forks a
// binary, pandoc may call LaTeX), so killing only the direct child would
// leak work past the timeout.
package procutil

import (
	"os/exec"
	"syscall"
)

// Isolate places the command in its own process group so the whole tree can
// be signalled at once. Must be called before the command is started.
func Isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillTree kills a process and all its children by sending SIGKILL to the
// process group (negative PID). Best-effort; an error means the group is
// already gone.
func KillTree(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
