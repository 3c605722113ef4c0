//go:build windows

// Package procutil configures and terminates engine process trees.
package procutil

import (
	"os/exec"
	"strconv"
)

// Isolate is a no-op on Windows; taskkill handles the tree instead.
func Isolate(cmd *exec.Cmd) {}

// KillTree kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillTree(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
