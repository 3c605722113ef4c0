package main

import (
	"context"
	"errors"
	"os"

	docconv "github.com/alnah/go-docconv"
	"github.com/alnah/go-docconv/internal/config"
)

// Exit codes for the docconv CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // All files converted
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or unsupported format pair
	ExitIO         = 3 // File not found, permission denied, workspace fault
	ExitCapacity   = 4 // Admission queue full
	ExitConversion = 5 // Every engine failed or the deadline was exceeded
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, docconv.ErrCapacityExceeded) {
		return ExitCapacity
	}

	// Conversion failures (exit 5)
	if errors.Is(err, docconv.ErrAllEnginesExhausted) ||
		errors.Is(err, docconv.ErrOuterTimeoutExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return ExitConversion
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docconv.ErrWorkspaceIO) ||
		errors.Is(err, docconv.ErrPathEscape) ||
		errors.Is(err, ErrReadInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, docconv.ErrUnsupportedConversion) ||
		errors.Is(err, docconv.ErrEmptyFilename) ||
		errors.Is(err, docconv.ErrEmptySource) ||
		errors.Is(err, docconv.ErrEmptyFormat) ||
		errors.Is(err, docconv.ErrEmptyOutputDir) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrNoEngines) ||
		errors.Is(err, config.ErrInvalidLimit) ||
		errors.Is(err, config.ErrInvalidEngine) ||
		errors.Is(err, config.ErrInvalidRoute) ||
		errors.Is(err, config.ErrInvalidTimeout) ||
		errors.Is(err, config.ErrDuplicateName) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoTargetFormat) ||
		errors.Is(err, ErrNoSourceFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
