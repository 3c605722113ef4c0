package main

import (
	"fmt"
	"io"
)

// printUsage writes top-level usage.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `docconv - convert documents via external engines

Usage:
  docconv convert [flags] <file>...
  docconv doctor [flags]
  docconv version
  docconv help

Commands:
  convert   Convert one or more files to a target format
  doctor    Check configured engine binaries and the environment
  version   Print the version
  help      Print this help

Run "docconv convert --help" for convert flags.
`)
}

// printConvertUsage writes usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: docconv convert --to <format> [flags] <file>...

Converts each input file to the target format using the configured engine
registry. Engines are tried in priority order until one succeeds.

Flags:
  -t, --to string           target format, e.g. pdf (required)
  -o, --output string       output directory (default ".")
  -c, --config string       engine registry file (YAML); empty = built-in
      --max-concurrent int  in-flight conversion limit (0 = from config)
      --queue-size int      admission queue ceiling (-1 = from config)
      --timeout string      whole-chain deadline per file (e.g. 30s, 2m)
      --temp-root string    workspace root directory
  -w, --workers int         parallel file submissions (0 = max-concurrent)
  -q, --quiet               only show errors
  -v, --verbose             show per-attempt diagnostics

Examples:
  docconv convert --to pdf report.docx
  docconv convert --to pdf -o out/ *.docx
  docconv convert --to docx --config engines.yaml notes.md
`)
}

// printDoctorUsage writes usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: docconv doctor [flags]

Checks that configured engine binaries resolve on PATH and that the
environment can run conversions.

Flags:
  -c, --config string  engine registry file (YAML); empty = built-in
      --json           machine-readable output
`)
}
