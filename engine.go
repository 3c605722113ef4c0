package docconv

import (
	"strings"
	"time"
)

// Placeholder tokens recognized in engine argument templates. Substitution
// happens exactly once per attempt; the expanded arguments are passed as a
// vector directly to the OS process creation call, never through a shell.
const (
	PlaceholderInput  = "{input}"  // absolute path of the input file
	PlaceholderOutDir = "{outdir}" // absolute path of the workspace output directory
	PlaceholderFormat = "{format}" // requested target format token
)

// EngineDescriptor declares one external conversion engine. Descriptors are
// immutable once loaded from configuration.
type EngineDescriptor struct {
	Name     string        // unique engine name, used in attempt records
	Priority int           // higher priority engines are tried first
	Command  string        // executable path, or a name resolved via PATH
	Args     []string      // argument template with placeholders
	Timeout  time.Duration // hard per-attempt deadline
}

// Validate checks that the descriptor is complete enough to invoke.
func (e EngineDescriptor) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEngineName
	}
	if strings.TrimSpace(e.Command) == "" {
		return ErrEngineCommand
	}
	if e.Timeout <= 0 {
		return ErrEngineTimeout
	}
	for _, arg := range e.Args {
		if strings.Contains(arg, PlaceholderInput) {
			return nil
		}
	}
	return ErrEngineArgs
}

// buildArgs expands the argument template for one attempt.
func (e EngineDescriptor) buildArgs(inputPath, outputDir, targetFormat string) []string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		arg = strings.ReplaceAll(arg, PlaceholderInput, inputPath)
		arg = strings.ReplaceAll(arg, PlaceholderOutDir, outputDir)
		arg = strings.ReplaceAll(arg, PlaceholderFormat, targetFormat)
		args[i] = arg
	}
	return args
}
