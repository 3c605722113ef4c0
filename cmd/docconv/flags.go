package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	config        string
	output        string
	to            string
	maxConcurrent int
	queueSize     int
	timeout       string
	tempRoot      string
	workers       int
	quiet         bool
	verbose       bool
}

// parseConvertFlags parses convert command flags and returns positional args
// (the input files).
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "engine registry file (YAML); empty = built-in registry")
	fs.StringVarP(&f.output, "output", "o", ".", "output directory")
	fs.StringVarP(&f.to, "to", "t", "", "target format, e.g. pdf")
	fs.IntVar(&f.maxConcurrent, "max-concurrent", 0, "in-flight conversion limit (0 = from config)")
	fs.IntVar(&f.queueSize, "queue-size", -1, "admission queue ceiling (-1 = from config)")
	fs.StringVar(&f.timeout, "timeout", "", "whole-chain deadline per file (e.g. 30s, 2m)")
	fs.StringVar(&f.tempRoot, "temp-root", "", "workspace root directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel file submissions (0 = max-concurrent)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-attempt diagnostics")

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "engine registry file (YAML); empty = built-in registry")
	fs.BoolVar(&f.json, "json", false, "machine-readable output")

	fs.Usage = func() { printDoctorUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
