package main

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// newLogger returns the service diagnostics logger. Quiet by default; with
// --verbose, per-attempt records (engine, outcome, exit code, duration) go
// to stderr so stdout stays parseable.
func newLogger(verbose bool, w io.Writer) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: 1})
}
