package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	os.Exit(run(ctx, os.Args[1:], DefaultDeps()))
}

// run dispatches subcommands and returns the process exit code.
func run(ctx context.Context, args []string, deps *Dependencies) int {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "convert":
		return runConvertCmd(ctx, args[1:], deps)
	case "doctor":
		return runDoctorCmd(args[1:], deps)
	case "help", "-h", "--help":
		printUsage(deps.Stdout)
		return ExitSuccess
	case "version", "--version":
		fmt.Fprintf(deps.Stdout, "docconv %s\n", Version)
		return ExitSuccess
	default:
		// Bare invocation with input files is the common case; treat any
		// argument that is not a known subcommand as convert input.
		return runConvertCmd(ctx, args, deps)
	}
}
