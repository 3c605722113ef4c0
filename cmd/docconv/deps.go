package main

import (
	"io"
	"os"
	"os/exec"
	"time"
)

// Dependencies holds the process-level collaborators the commands need:
// output streams, the clock behind duration reporting, and the PATH probe
// doctor uses to resolve engine binaries. Tests swap them for fakes.
type Dependencies struct {
	Now      func() time.Time
	Stdout   io.Writer
	Stderr   io.Writer
	LookPath func(file string) (string, error)
}

// DefaultDeps returns the real process environment.
func DefaultDeps() *Dependencies {
	return &Dependencies{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
	}
}
